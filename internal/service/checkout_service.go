package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/port"
)

type CartIssue struct {
	SKUID     uuid.UUID
	Reason    domain.IssueReason
	Label     string
	Requested int
	Available int
}

type CheckoutReport struct {
	CartID uuid.UUID
	Issues []CartIssue
	Prices domain.PriceReport
}

func (r CheckoutReport) CanPlaceOrder() bool {
	return len(r.Issues) == 0
}

// CheckoutService re-checks availability right before order placement.
// It reserves nothing: stock is checked again when the order is committed.
type CheckoutService struct {
	carts port.CartRepository
	now   func() time.Time
}

func NewCheckoutService(carts port.CartRepository) *CheckoutService {
	return &CheckoutService{carts: carts, now: time.Now}
}

// Validate loads the cart of owner, never a cart picked by the client, and reports every blocking issue.
func (s *CheckoutService) Validate(ctx context.Context, owner domain.Owner) (CheckoutReport, error) {
	if err := owner.Validate(); err != nil {
		return CheckoutReport{}, err
	}

	cart, err := s.carts.GetCart(ctx, owner)
	if errors.Is(err, domain.ErrCartNotFound) {
		return CheckoutReport{}, domain.ErrCartEmpty
	}
	if err != nil {
		return CheckoutReport{}, fmt.Errorf("carts.GetCart: %w", err)
	}

	if cart.IsEmpty() || cart.IsExpired(s.now()) {
		return CheckoutReport{}, domain.ErrCartEmpty
	}

	report := CheckoutReport{
		CartID: cart.ID,
		Prices: domain.Reconcile(cart.Items),
	}

	for _, item := range cart.Items {
		reason, ok := domain.Issue(item)
		if !ok {
			continue
		}
		report.Issues = append(report.Issues, CartIssue{
			SKUID:     item.SKUID,
			Reason:    reason,
			Label:     reason.Label(),
			Requested: item.Quantity,
			Available: item.SKU.Inventory,
		})
	}

	return report, nil
}
