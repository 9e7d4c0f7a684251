package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/cache"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type MergeConfig struct {
	MaxCartItems int
	RateLimit    port.RateLimitPolicy
}

type MergeRequest struct {
	// Caller is the authenticated identity performing the merge.
	Caller    uuid.UUID
	UserID    uuid.UUID
	SessionID string
}

func (r MergeRequest) validate() error {
	if r.UserID == uuid.Nil {
		return &domain.ValidationError{Field: "userId", Message: "user id is required"}
	}
	if r.SessionID == "" {
		return &domain.ValidationError{Field: "sessionId", Message: "session id is required"}
	}
	return nil
}

// MergeService folds a guest cart into the user cart at login.
type MergeService struct {
	carts   port.CartRepository
	users   port.UserRepository
	limiter port.RateLimiter
	cache   port.CacheInvalidator
	cfg     MergeConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewMergeService(
	carts port.CartRepository,
	users port.UserRepository,
	limiter port.RateLimiter,
	invalidator port.CacheInvalidator,
	cfg MergeConfig,
	logger *zap.Logger,
) *MergeService {
	return &MergeService{
		carts:   carts,
		users:   users,
		limiter: limiter,
		cache:   invalidator,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *MergeService) Merge(ctx context.Context, req MergeRequest) (domain.MergeResult, error) {
	if err := req.validate(); err != nil {
		return domain.MergeResult{}, err
	}

	if req.Caller != req.UserID {
		return domain.MergeResult{}, domain.ErrUnauthorized
	}

	decision, err := s.limiter.Allow(ctx, fmt.Sprintf("%s:%s", req.UserID, req.SessionID), s.cfg.RateLimit)
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("limiter.Allow: %w", err)
	}
	if !decision.Allowed {
		return domain.MergeResult{}, &domain.RateLimitError{Message: decision.Message, RetryAfter: decision.RetryAfter}
	}

	guestOwner := domain.SessionOwner(req.SessionID)
	userOwner := domain.UserOwner(req.UserID)

	guest, err := s.loadGuest(ctx, req.UserID, guestOwner)
	if err != nil {
		return domain.MergeResult{}, err
	}

	if guest == nil || guest.IsEmpty() || guest.IsExpired(s.now()) {
		if guest != nil {
			if _, err := s.carts.DeleteCart(ctx, guest.ID); err != nil {
				return domain.MergeResult{}, fmt.Errorf("carts.DeleteCart: %w", err)
			}
			s.invalidate(ctx, cache.OwnerTag(guestOwner))
		}
		return domain.MergeResult{}, nil
	}

	var (
		result  domain.MergeResult
		plan    domain.MergePlan
		touched map[uuid.UUID]struct{}
	)

	err = s.carts.Transact(ctx, func(tx port.CartRepository) error {
		result = domain.MergeResult{}
		touched = make(map[uuid.UUID]struct{})

		// read inside the transaction, a concurrent add-to-cart may have created it
		target, err := tx.GetCart(ctx, userOwner)
		switch {
		case errors.Is(err, domain.ErrCartNotFound):
			target, err = tx.CreateCart(ctx, userOwner, time.Time{})
			if err != nil {
				return fmt.Errorf("tx.CreateCart: %w", err)
			}
		case err != nil:
			return fmt.Errorf("tx.GetCart: %w", err)
		}

		plan = domain.PlanMerge(*guest, target, s.cfg.MaxCartItems)

		snapshots, err := tx.GetSKUSnapshots(ctx, plan.SKUIDs())
		if err != nil {
			return fmt.Errorf("tx.GetSKUSnapshots: %w", err)
		}

		for _, c := range plan.Candidates {
			sku, ok := snapshots[c.SKUID]
			if !ok || !domain.CanFulfil(sku, c.Quantity) {
				continue
			}

			if c.Existing {
				if _, err := tx.SetItemQuantity(ctx, target.ID, c.SKUID, c.Quantity); err != nil {
					return fmt.Errorf("tx.SetItemQuantity: %w", err)
				}
				result.Conflicts++
			} else {
				item := domain.LineItem{SKUID: c.SKUID, Quantity: c.Quantity, PriceAtAdd: c.PriceAtAdd}
				if err := tx.AddItem(ctx, target.ID, item); err != nil {
					return fmt.Errorf("tx.AddItem: %w", err)
				}
				result.MergedItems++
			}
			touched[sku.ListingID] = struct{}{}
		}

		if _, err := tx.DeleteCart(ctx, guest.ID); err != nil {
			return fmt.Errorf("tx.DeleteCart: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("merge transaction: %w", err)
	}

	tags := []string{cache.OwnerTag(guestOwner), cache.OwnerTag(userOwner)}
	for listingID := range touched {
		tags = append(tags, cache.ProductTag(listingID))
	}
	s.invalidate(ctx, tags...)

	s.logger.Info("guest cart merged",
		zap.String("user_id", req.UserID.String()),
		zap.String("guest_cart_id", guest.ID.String()),
		zap.Int("merged", result.MergedItems),
		zap.Int("conflicts", result.Conflicts),
		zap.Int("dropped", plan.Dropped),
		zap.Int("truncated", plan.Truncated),
	)

	return result, nil
}

// loadGuest checks the user account and loads the guest cart concurrently.
// A missing guest cart is returned as nil.
func (s *MergeService) loadGuest(ctx context.Context, userID uuid.UUID, guestOwner domain.Owner) (*domain.Cart, error) {
	var (
		exists bool
		guest  *domain.Cart
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		exists, err = s.users.UserExists(gctx, userID)
		if err != nil {
			return fmt.Errorf("users.UserExists: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		cart, err := s.carts.GetCart(gctx, guestOwner)
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get guest cart: %w", err)
		}
		guest = &cart
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !exists {
		return nil, domain.ErrUserNotFound
	}

	return guest, nil
}

// invalidate runs after commit, a cache failure must not fail the request.
func (s *MergeService) invalidate(ctx context.Context, tags ...string) {
	if err := s.cache.Invalidate(ctx, tags...); err != nil {
		s.logger.Warn("cache invalidate error", zap.Strings("tags", tags), zap.Error(err))
	}
}
