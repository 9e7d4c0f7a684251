package testpg

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/atelier-cart/internal/domain"
)

type SKUSpec struct {
	Price          int64
	CompareAtPrice int64
	Inventory      int
	Inactive       bool
	Status         domain.ListingStatus
}

// InsertSKU creates a listing with a single variant.
func InsertSKU(ctx context.Context, pool *pgxpool.Pool, spec SKUSpec) (domain.SKUSnapshot, error) {
	status := spec.Status
	if status == "" {
		status = domain.ListingPublic
	}

	sku := domain.SKUSnapshot{
		ID:             uuid.New(),
		ListingID:      uuid.New(),
		Inventory:      spec.Inventory,
		IsActive:       !spec.Inactive,
		ListingStatus:  status,
		Price:          spec.Price,
		CompareAtPrice: spec.CompareAtPrice,
	}

	_, err := pool.Exec(ctx, "INSERT INTO listings (id, name, status) VALUES ($1, $2, $3)",
		sku.ListingID, gofakeit.ProductName(), string(status))
	if err != nil {
		return domain.SKUSnapshot{}, fmt.Errorf("insert listing: %w", err)
	}

	compareAt := pgtype.Int8{Int64: spec.CompareAtPrice, Valid: spec.CompareAtPrice > 0}
	_, err = pool.Exec(ctx,
		"INSERT INTO skus (id, listing_id, price, compare_at_price, inventory, is_active) VALUES ($1, $2, $3, $4, $5, $6)",
		sku.ID, sku.ListingID, sku.Price, compareAt, sku.Inventory, sku.IsActive)
	if err != nil {
		return domain.SKUSnapshot{}, fmt.Errorf("insert sku: %w", err)
	}

	return sku, nil
}

func SetSKUPrice(ctx context.Context, pool *pgxpool.Pool, skuID uuid.UUID, price int64) error {
	_, err := pool.Exec(ctx, "UPDATE skus SET price = $2 WHERE id = $1", skuID, price)
	return err
}

func SetSKUInventory(ctx context.Context, pool *pgxpool.Pool, skuID uuid.UUID, inventory int) error {
	_, err := pool.Exec(ctx, "UPDATE skus SET inventory = $2 WHERE id = $1", skuID, inventory)
	return err
}

func InsertUser(ctx context.Context, pool *pgxpool.Pool, deleted bool) (uuid.UUID, error) {
	id := uuid.New()

	_, err := pool.Exec(ctx,
		"INSERT INTO users (id, email, deleted_at) VALUES ($1, $2, CASE WHEN $3::boolean THEN NOW() END)",
		id, gofakeit.Email(), deleted)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func Truncate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE TABLE cart_items, carts, skus, listings, users CASCADE")
	return err
}
