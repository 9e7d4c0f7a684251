package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/atelier-cart/internal/db"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/port"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

// NewCartWithTx binds the repository to a transaction owned by the caller, Transact then runs inline.
func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) Transact(ctx context.Context, fn func(repo port.CartRepository) error) error {
	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		return struct{}{}, fn(&cartRepository{q: q})
	})
	return err
}

func (r *cartRepository) GetCart(ctx context.Context, owner domain.Owner) (domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return domain.Cart{}, err
	}

	var (
		dbCart db.Cart
		err    error
	)
	if owner.IsGuest() {
		dbCart, err = r.q.GetCartBySession(ctx, pgtype.Text{String: owner.SessionID, Valid: true})
	} else {
		dbCart, err = r.q.GetCartByUser(ctx, uuid.NullUUID{UUID: owner.UserID, Valid: true})
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	rows, err := r.q.ListCartLines(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.ListCartLines: %w", err)
	}

	cart := mapCartToDomain(dbCart)
	cart.Items = mapCartLinesToDomain(rows)

	return cart, nil
}

func (r *cartRepository) CreateCart(ctx context.Context, owner domain.Owner, expiresAt time.Time) (domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return domain.Cart{}, err
	}

	params := db.CreateCartParams{ID: uuid.New()}
	if owner.IsGuest() {
		if expiresAt.IsZero() {
			return domain.Cart{}, fmt.Errorf("expiresAt is empty for session cart")
		}
		params.SessionID = pgtype.Text{String: owner.SessionID, Valid: true}
		params.ExpiresAt = pgtype.Timestamptz{Time: expiresAt, Valid: true}
	} else {
		params.UserID = uuid.NullUUID{UUID: owner.UserID, Valid: true}
	}

	dbCart, err := r.q.CreateCart(ctx, params)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.CreateCart: %w", err)
	}

	return mapCartToDomain(dbCart), nil
}

func (r *cartRepository) DeleteCart(ctx context.Context, cartID uuid.UUID) (bool, error) {
	rowsAffected, err := r.q.DeleteCart(ctx, cartID)
	if err != nil {
		return false, fmt.Errorf("q.DeleteCart: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	rowsAffected, err := r.q.DeleteExpiredCarts(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("q.DeleteExpiredCarts: %w", err)
	}

	return rowsAffected, nil
}

func (r *cartRepository) AddItem(ctx context.Context, cartID uuid.UUID, item domain.LineItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("quantity must be positive")
	}

	err := r.q.InsertCartItem(ctx, db.InsertCartItemParams{
		CartID:     cartID,
		SkuID:      item.SKUID,
		Quantity:   int32(item.Quantity),
		PriceAtAdd: item.PriceAtAdd,
	})
	if err != nil {
		return fmt.Errorf("q.InsertCartItem: %w", err)
	}

	if err := r.q.TouchCart(ctx, cartID); err != nil {
		return fmt.Errorf("q.TouchCart: %w", err)
	}

	return nil
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, skuID uuid.UUID, quantity int) (bool, error) {
	if quantity < 1 {
		return false, fmt.Errorf("quantity must be positive")
	}

	rowsAffected, err := r.q.SetCartItemQuantity(ctx, db.SetCartItemQuantityParams{
		CartID:   cartID,
		SkuID:    skuID,
		Quantity: int32(quantity),
	})
	if err != nil {
		return false, fmt.Errorf("q.SetCartItemQuantity: %w", err)
	}

	if rowsAffected > 0 {
		if err := r.q.TouchCart(ctx, cartID); err != nil {
			return false, fmt.Errorf("q.TouchCart: %w", err)
		}
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) RefreshPrices(ctx context.Context, cartID uuid.UUID) (int64, error) {
	rowsAffected, err := r.q.RefreshCartPrices(ctx, cartID)
	if err != nil {
		return 0, fmt.Errorf("q.RefreshCartPrices: %w", err)
	}

	return rowsAffected, nil
}

func (r *cartRepository) GetSKUSnapshots(ctx context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]domain.SKUSnapshot, error) {
	result := make(map[uuid.UUID]domain.SKUSnapshot, len(skuIDs))
	if len(skuIDs) == 0 {
		return result, nil
	}

	rows, err := r.q.GetSKUSnapshots(ctx, skuIDs)
	if err != nil {
		return nil, fmt.Errorf("q.GetSKUSnapshots: %w", err)
	}

	for _, row := range rows {
		result[row.ID] = domain.SKUSnapshot{
			ID:             row.ID,
			ListingID:      row.ListingID,
			Inventory:      int(row.Inventory),
			IsActive:       row.IsActive,
			ListingStatus:  domain.ListingStatus(row.ListingStatus),
			Price:          row.Price,
			CompareAtPrice: row.CompareAtPrice.Int64,
		}
	}

	return result, nil
}

func mapCartToDomain(c db.Cart) domain.Cart {
	cart := domain.Cart{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if c.SessionID.Valid {
		cart.Owner = domain.SessionOwner(c.SessionID.String)
	} else {
		cart.Owner = domain.UserOwner(c.UserID.UUID)
	}

	if c.ExpiresAt.Valid {
		cart.ExpiresAt = c.ExpiresAt.Time
	}

	return cart
}

func mapCartLineToDomain(row db.ListCartLinesRow) domain.LineItem {
	return domain.LineItem{
		SKUID:      row.SkuID,
		Quantity:   int(row.Quantity),
		PriceAtAdd: row.PriceAtAdd,
		SKU: domain.SKUSnapshot{
			ID:             row.SkuID,
			ListingID:      row.ListingID,
			Inventory:      int(row.Inventory),
			IsActive:       row.IsActive,
			ListingStatus:  domain.ListingStatus(row.ListingStatus),
			Price:          row.Price,
			CompareAtPrice: row.CompareAtPrice.Int64,
		},
		CreatedAt: row.CreatedAt,
	}
}

func mapCartLinesToDomain(rows []db.ListCartLinesRow) []domain.LineItem {
	var items []domain.LineItem

	for _, row := range rows {
		items = append(items, mapCartLineToDomain(row))
	}

	return items
}
