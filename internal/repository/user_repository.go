package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/atelier-cart/internal/db"
	"github.com/nikolayk812/atelier-cart/internal/port"
)

type userRepository struct {
	q *db.Queries
}

func NewUser(pool *pgxpool.Pool) port.UserRepository {
	return &userRepository{q: db.New(pool)}
}

func (r *userRepository) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, fmt.Errorf("userID is empty")
	}

	exists, err := r.q.UserExists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("q.UserExists: %w", err)
	}

	return exists, nil
}
