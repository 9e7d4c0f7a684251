// Package testpg starts a migrated Postgres container for integration tests.
package testpg

import (
	"context"
	"fmt"

	"github.com/nikolayk812/atelier-cart/internal/dbmigrate"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func Start(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	if err := dbmigrate.Up(connStr); err != nil {
		return nil, "", fmt.Errorf("dbmigrate.Up: %w", err)
	}

	return postgresContainer, connStr, nil
}

// Terminate stops and removes the container, a nil container is a no-op.
func Terminate(pc *postgres.PostgresContainer) error {
	if pc == nil {
		return nil
	}
	return testcontainers.TerminateContainer(pc)
}
