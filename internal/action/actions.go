package action

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/service"
	"go.uber.org/zap"
)

const internalMessage = "Something went wrong, please try again."

type Merger interface {
	Merge(ctx context.Context, req service.MergeRequest) (domain.MergeResult, error)
}

type CheckoutValidator interface {
	Validate(ctx context.Context, owner domain.Owner) (service.CheckoutReport, error)
}

type CartOperator interface {
	AddItem(ctx context.Context, owner domain.Owner, skuID uuid.UUID, qty int) (domain.Cart, error)
	Summary(ctx context.Context, owner domain.Owner) (service.CartSummary, error)
	RefreshPrices(ctx context.Context, owner domain.Owner) (int64, error)
}

// Actions is the boundary between transports and services. No error escapes it:
// every outcome is a Result.
type Actions struct {
	merger   Merger
	checkout CheckoutValidator
	carts    CartOperator
	logger   *zap.Logger
}

func New(merger Merger, checkout CheckoutValidator, carts CartOperator, logger *zap.Logger) *Actions {
	return &Actions{
		merger:   merger,
		checkout: checkout,
		carts:    carts,
		logger:   logger,
	}
}

// MergeGuestCart runs at login. The caller must be authenticated as userID.
func (a *Actions) MergeGuestCart(ctx context.Context, id domain.Identity, userID uuid.UUID, sessionID string) Result[domain.MergeResult] {
	if !id.IsAuthenticated() {
		return Failure[domain.MergeResult]{Kind: KindUnauthorized, Message: domain.ErrUnauthorized.Error()}
	}

	result, err := a.merger.Merge(ctx, service.MergeRequest{
		Caller:    id.UserID,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return fail[domain.MergeResult](a.logger, "merge guest cart", id, err)
	}

	return Success[domain.MergeResult]{Data: result}
}

func (a *Actions) ValidateCheckout(ctx context.Context, id domain.Identity) Result[service.CheckoutReport] {
	report, err := a.checkout.Validate(ctx, id.Owner())
	if err != nil {
		return fail[service.CheckoutReport](a.logger, "validate checkout", id, err)
	}

	return Success[service.CheckoutReport]{Data: report}
}

func (a *Actions) AddToCart(ctx context.Context, id domain.Identity, skuID uuid.UUID, qty int) Result[domain.Cart] {
	cart, err := a.carts.AddItem(ctx, id.Owner(), skuID, qty)
	if err != nil {
		return fail[domain.Cart](a.logger, "add to cart", id, err)
	}

	return Success[domain.Cart]{Data: cart}
}

func (a *Actions) CartSummary(ctx context.Context, id domain.Identity) Result[service.CartSummary] {
	summary, err := a.carts.Summary(ctx, id.Owner())
	if err != nil {
		return fail[service.CartSummary](a.logger, "cart summary", id, err)
	}

	return Success[service.CartSummary]{Data: summary}
}

// RefreshPrices accepts every current price in the cart of the caller.
func (a *Actions) RefreshPrices(ctx context.Context, id domain.Identity) Result[int64] {
	updated, err := a.carts.RefreshPrices(ctx, id.Owner())
	if err != nil {
		return fail[int64](a.logger, "refresh prices", id, err)
	}

	return Success[int64]{Data: updated}
}

func fail[T any](logger *zap.Logger, op string, id domain.Identity, err error) Result[T] {
	kind, message := Classify(err)
	if kind == KindInternal {
		logger.Error(op+" failed",
			zap.String("user_id", id.UserID.String()),
			zap.String("session_id", id.SessionID),
			zap.Error(err),
		)
	}

	return Failure[T]{Kind: kind, Message: message}
}

var (
	notFoundErrors = []error{domain.ErrUserNotFound, domain.ErrCartNotFound, domain.ErrSKUNotFound}
	ruleErrors     = []error{domain.ErrCartEmpty, domain.ErrCartFull, domain.ErrItemUnavailable, domain.ErrOutOfStock}
)

// Classify maps an error to its kind and the message safe to show to the caller.
func Classify(err error) (ErrorKind, string) {
	var (
		rlErr *domain.RateLimitError
		vErr  *domain.ValidationError
	)

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return KindUnauthorized, domain.ErrUnauthorized.Error()
	case errors.As(err, &rlErr):
		return KindRateLimited, rlErr.Message
	case errors.As(err, &vErr):
		return KindValidation, vErr.Error()
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return KindNotFound, target.Error()
		}
	}

	for _, target := range ruleErrors {
		if errors.Is(err, target) {
			return KindBusinessRule, target.Error()
		}
	}

	return KindInternal, internalMessage
}
