package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/cache"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CartConfig struct {
	MaxCartItems int
	GuestCartTTL time.Duration
	SummaryTTL   time.Duration
}

type CartSummary struct {
	ItemCount  int   `json:"itemCount"`
	Quantity   int   `json:"quantity"`
	Subtotal   int64 `json:"subtotal"`
	StaleItems int   `json:"staleItems"`
	Savings    int64 `json:"savings"`
	Issues     int   `json:"issues"`
}

type CartService struct {
	carts  port.CartRepository
	cache  port.TaggedCache
	cfg    CartConfig
	logger *zap.Logger
	sfg    singleflight.Group // Prevents cache stampede
	now    func() time.Time
}

func NewCartService(carts port.CartRepository, tagged port.TaggedCache, cfg CartConfig, logger *zap.Logger) *CartService {
	return &CartService{
		carts:  carts,
		cache:  tagged,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// AddItem adds qty of sku to the cart of owner, creating the cart on first use.
// The snapshot price is the current price of the SKU.
func (s *CartService) AddItem(ctx context.Context, owner domain.Owner, skuID uuid.UUID, qty int) (domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return domain.Cart{}, err
	}
	if skuID == uuid.Nil {
		return domain.Cart{}, &domain.ValidationError{Field: "skuId", Message: "sku id is required"}
	}
	if qty < 1 {
		return domain.Cart{}, &domain.ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}

	var listingID uuid.UUID

	err := s.carts.Transact(ctx, func(tx port.CartRepository) error {
		snapshots, err := tx.GetSKUSnapshots(ctx, []uuid.UUID{skuID})
		if err != nil {
			return fmt.Errorf("tx.GetSKUSnapshots: %w", err)
		}
		sku, ok := snapshots[skuID]
		if !ok {
			return domain.ErrSKUNotFound
		}
		listingID = sku.ListingID

		cart, err := s.loadOrCreate(ctx, tx, owner)
		if err != nil {
			return err
		}

		existing, found := cart.Item(skuID)
		total := qty
		if found {
			total += existing.Quantity
		} else if len(cart.Items) >= s.cfg.MaxCartItems {
			return domain.ErrCartFull
		}

		if !sku.IsPurchasable() {
			return domain.ErrItemUnavailable
		}
		if !domain.CanFulfil(sku, total) {
			return domain.ErrOutOfStock
		}

		if found {
			if _, err := tx.SetItemQuantity(ctx, cart.ID, skuID, total); err != nil {
				return fmt.Errorf("tx.SetItemQuantity: %w", err)
			}
			return nil
		}

		item := domain.LineItem{SKUID: skuID, Quantity: qty, PriceAtAdd: sku.Price}
		if err := tx.AddItem(ctx, cart.ID, item); err != nil {
			return fmt.Errorf("tx.AddItem: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	s.invalidate(ctx, cache.OwnerTag(owner), cache.ProductTag(listingID))

	cart, err := s.carts.GetCart(ctx, owner)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.GetCart: %w", err)
	}

	return cart, nil
}

// getLiveCart loads the cart of owner, an expired guest cart is reported as domain.ErrCartNotFound.
func (s *CartService) getLiveCart(ctx context.Context, owner domain.Owner) (domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, owner)
	if err != nil {
		return domain.Cart{}, err
	}
	if cart.IsExpired(s.now()) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cart, nil
}

func (s *CartService) loadOrCreate(ctx context.Context, tx port.CartRepository, owner domain.Owner) (domain.Cart, error) {
	cart, err := tx.GetCart(ctx, owner)
	switch {
	case err == nil && !cart.IsExpired(s.now()):
		return cart, nil
	case err == nil:
		if _, err := tx.DeleteCart(ctx, cart.ID); err != nil {
			return domain.Cart{}, fmt.Errorf("tx.DeleteCart: %w", err)
		}
	case !errors.Is(err, domain.ErrCartNotFound):
		return domain.Cart{}, fmt.Errorf("tx.GetCart: %w", err)
	}

	var expiresAt time.Time
	if owner.IsGuest() {
		expiresAt = s.now().Add(s.cfg.GuestCartTTL)
	}

	created, err := tx.CreateCart(ctx, owner, expiresAt)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("tx.CreateCart: %w", err)
	}

	return created, nil
}

// Summary is a cached read, tagged with the owner and every product in the cart.
func (s *CartService) Summary(ctx context.Context, owner domain.Owner) (CartSummary, error) {
	if err := owner.Validate(); err != nil {
		return CartSummary{}, err
	}

	key := "cart-summary:" + owner.String()

	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		// shared by every caller waiting on key
		ctx := context.WithoutCancel(ctx)

		data, err := s.cache.Get(ctx, key)
		if err == nil {
			var summary CartSummary
			if errUnmarshal := json.Unmarshal(data, &summary); errUnmarshal == nil {
				return summary, nil
			}
			s.logger.Warn("cache entry is corrupt", zap.String("key", key))
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.String("key", key), zap.Error(err)) // log cache error but continue
		}

		cart, err := s.getLiveCart(ctx, owner)
		if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
			return nil, fmt.Errorf("carts.GetCart: %w", err)
		}

		summary := summarize(cart.Items)

		tags := []string{cache.OwnerTag(owner)}
		for _, item := range cart.Items {
			tags = append(tags, cache.ProductTag(item.SKU.ListingID))
		}

		payload, err := json.Marshal(summary)
		if err != nil {
			return nil, fmt.Errorf("marshal summary: %w", err)
		}
		if err := s.cache.Set(ctx, key, payload, s.cfg.SummaryTTL, tags...); err != nil {
			s.logger.Warn("cache set error", zap.String("key", key), zap.Error(err))
		}

		return summary, nil
	})
	if err != nil {
		return CartSummary{}, err
	}

	return v.(CartSummary), nil
}

func summarize(items []domain.LineItem) CartSummary {
	summary := CartSummary{
		ItemCount: len(items),
		Savings:   domain.TotalSavings(items),
	}

	for _, item := range items {
		summary.Quantity += item.Quantity
		summary.Subtotal += item.PriceAtAdd * int64(item.Quantity)
		if domain.HasChanged(item) {
			summary.StaleItems++
		}
		if domain.HasIssue(item) {
			summary.Issues++
		}
	}

	return summary
}

// RefreshPrices overwrites every price snapshot in the cart with the current price.
func (s *CartService) RefreshPrices(ctx context.Context, owner domain.Owner) (int64, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}

	cart, err := s.getLiveCart(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("carts.GetCart: %w", err)
	}

	updated, err := s.carts.RefreshPrices(ctx, cart.ID)
	if err != nil {
		return 0, fmt.Errorf("carts.RefreshPrices: %w", err)
	}

	if updated > 0 {
		tags := []string{cache.OwnerTag(owner)}
		for _, item := range cart.Items {
			if domain.HasChanged(item) {
				tags = append(tags, cache.ProductTag(item.SKU.ListingID))
			}
		}
		s.invalidate(ctx, tags...)
	}

	return updated, nil
}

func (s *CartService) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := s.carts.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("carts.DeleteExpired: %w", err)
	}

	return purged, nil
}

func (s *CartService) invalidate(ctx context.Context, tags ...string) {
	if err := s.cache.Invalidate(ctx, tags...); err != nil {
		s.logger.Warn("cache invalidate error", zap.Strings("tags", tags), zap.Error(err))
	}
}
