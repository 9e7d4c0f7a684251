package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/domain"
)

type CartRepository interface {
	CatalogRepository

	// GetCart returns domain.ErrCartNotFound when owner has no cart.
	GetCart(ctx context.Context, owner domain.Owner) (domain.Cart, error)
	CreateCart(ctx context.Context, owner domain.Owner, expiresAt time.Time) (domain.Cart, error)
	DeleteCart(ctx context.Context, cartID uuid.UUID) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	AddItem(ctx context.Context, cartID uuid.UUID, item domain.LineItem) error
	SetItemQuantity(ctx context.Context, cartID, skuID uuid.UUID, quantity int) (bool, error)
	RefreshPrices(ctx context.Context, cartID uuid.UUID) (int64, error)

	// Transact runs fn against a repository bound to a single transaction.
	Transact(ctx context.Context, fn func(repo CartRepository) error) error
}

type CatalogRepository interface {
	// GetSKUSnapshots loads all requested SKUs in one query; unknown ids are absent from the map.
	GetSKUSnapshots(ctx context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]domain.SKUSnapshot, error)
}

type UserRepository interface {
	// UserExists is false for missing and soft-deleted accounts.
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}
