package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/action"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/service"
	"golang.org/x/text/currency"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Kind    action.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

type reply struct {
	status int
	body   envelope
}

// respond writes res as an envelope, rendering the payload of a Success with render.
func respond[T any](w http.ResponseWriter, res action.Result[T], status int, render func(T) any) {
	rep := action.Match(res,
		func(data T) reply {
			return reply{status: status, body: envelope{Success: true, Data: render(data)}}
		},
		func(kind action.ErrorKind, message string) reply {
			return reply{status: statusFor(kind), body: envelope{Error: &errorBody{Kind: kind, Message: message}}}
		},
	)

	writeJSON(w, rep.status, rep.body)
}

func writeFailure(w http.ResponseWriter, kind action.ErrorKind, message string) {
	writeJSON(w, statusFor(kind), envelope{Error: &errorBody{Kind: kind, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func statusFor(kind action.ErrorKind) int {
	switch kind {
	case action.KindUnauthorized:
		return http.StatusForbidden
	case action.KindRateLimited:
		return http.StatusTooManyRequests
	case action.KindNotFound:
		return http.StatusNotFound
	case action.KindValidation:
		return http.StatusBadRequest
	case action.KindBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type moneyResponse struct {
	Amount  int64  `json:"amount"`
	Display string `json:"display"`
}

func money(amount int64, cur currency.Unit) moneyResponse {
	return moneyResponse{Amount: amount, Display: domain.NewMoney(amount, cur).String()}
}

type mergeResponse struct {
	MergedItems int `json:"mergedItems"`
	Conflicts   int `json:"conflicts"`
}

type lineItemResponse struct {
	SKUID           uuid.UUID     `json:"skuId"`
	Quantity        int           `json:"quantity"`
	PriceAtAdd      moneyResponse `json:"priceAtAdd"`
	CurrentPrice    moneyResponse `json:"currentPrice"`
	PriceChanged    bool          `json:"priceChanged"`
	DiscountPercent int64         `json:"discountPercent,omitempty"`
	Issue           string        `json:"issue,omitempty"`
}

type cartResponse struct {
	ID        uuid.UUID          `json:"id"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
	Items     []lineItemResponse `json:"items"`
}

func renderCart(cart domain.Cart, cur currency.Unit) cartResponse {
	resp := cartResponse{
		ID:    cart.ID,
		Items: make([]lineItemResponse, 0, len(cart.Items)),
	}
	if !cart.ExpiresAt.IsZero() {
		expiresAt := cart.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}

	for _, item := range cart.Items {
		label, _ := domain.IssueLabel(item)
		resp.Items = append(resp.Items, lineItemResponse{
			SKUID:           item.SKUID,
			Quantity:        item.Quantity,
			PriceAtAdd:      money(item.PriceAtAdd, cur),
			CurrentPrice:    money(item.SKU.Price, cur),
			PriceChanged:    domain.HasChanged(item),
			DiscountPercent: domain.DiscountPercent(item.SKU.CompareAtPrice, item.PriceAtAdd),
			Issue:           label,
		})
	}

	return resp
}

type issueResponse struct {
	SKUID     uuid.UUID `json:"skuId"`
	Reason    string    `json:"reason"`
	Label     string    `json:"label"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

type priceChangeResponse struct {
	SKUID      uuid.UUID     `json:"skuId"`
	Quantity   int           `json:"quantity"`
	PriceAtAdd moneyResponse `json:"priceAtAdd"`
	Current    moneyResponse `json:"current"`
	Difference moneyResponse `json:"difference"`
	Increase   bool          `json:"increase"`
}

type checkoutResponse struct {
	CartID        uuid.UUID             `json:"cartId"`
	CanPlaceOrder bool                  `json:"canPlaceOrder"`
	Issues        []issueResponse       `json:"issues"`
	PriceChanges  []priceChangeResponse `json:"priceChanges"`
	TotalSavings  moneyResponse         `json:"totalSavings"`
}

func renderCheckout(report service.CheckoutReport, cur currency.Unit) checkoutResponse {
	resp := checkoutResponse{
		CartID:        report.CartID,
		CanPlaceOrder: report.CanPlaceOrder(),
		Issues:        make([]issueResponse, 0, len(report.Issues)),
		PriceChanges:  make([]priceChangeResponse, 0, len(report.Prices.Changes)),
		TotalSavings:  money(report.Prices.TotalSavings, cur),
	}

	for _, issue := range report.Issues {
		resp.Issues = append(resp.Issues, issueResponse{
			SKUID:     issue.SKUID,
			Reason:    issue.Reason.String(),
			Label:     issue.Label,
			Requested: issue.Requested,
			Available: issue.Available,
		})
	}

	for _, change := range report.Prices.Changes {
		resp.PriceChanges = append(resp.PriceChanges, priceChangeResponse{
			SKUID:      change.SKUID,
			Quantity:   change.Quantity,
			PriceAtAdd: money(change.PriceAtAdd, cur),
			Current:    money(change.Current, cur),
			Difference: money(change.Difference, cur),
			Increase:   change.IsIncrease(),
		})
	}

	return resp
}

type summaryResponse struct {
	ItemCount  int           `json:"itemCount"`
	Quantity   int           `json:"quantity"`
	Subtotal   moneyResponse `json:"subtotal"`
	StaleItems int           `json:"staleItems"`
	Savings    moneyResponse `json:"savings"`
	Issues     int           `json:"issues"`
}

func renderSummary(s service.CartSummary, cur currency.Unit) summaryResponse {
	return summaryResponse{
		ItemCount:  s.ItemCount,
		Quantity:   s.Quantity,
		Subtotal:   money(s.Subtotal, cur),
		StaleItems: s.StaleItems,
		Savings:    money(s.Savings, cur),
		Issues:     s.Issues,
	}
}
