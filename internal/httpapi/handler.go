package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/action"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/service"
	"golang.org/x/text/currency"
)

const maxRequestBodySize = 1 << 20 // 1MB

type CartActions interface {
	MergeGuestCart(ctx context.Context, id domain.Identity, userID uuid.UUID, sessionID string) action.Result[domain.MergeResult]
	ValidateCheckout(ctx context.Context, id domain.Identity) action.Result[service.CheckoutReport]
	AddToCart(ctx context.Context, id domain.Identity, skuID uuid.UUID, qty int) action.Result[domain.Cart]
	CartSummary(ctx context.Context, id domain.Identity) action.Result[service.CartSummary]
	RefreshPrices(ctx context.Context, id domain.Identity) action.Result[int64]
}

type Handler struct {
	actions      CartActions
	currency     currency.Unit
	guestCartTTL time.Duration
}

func NewHandler(actions CartActions, cur currency.Unit, guestCartTTL time.Duration) *Handler {
	return &Handler{
		actions:      actions,
		currency:     cur,
		guestCartTTL: guestCartTTL,
	}
}

// Router wires the cart routes behind the identity middleware.
func (h *Handler) Router(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(Identify)

		r.Post("/merge", h.Merge)
		r.Get("/checkout/validate", h.ValidateCheckout)
		r.Post("/items", h.AddItem)
		r.Get("/summary", h.Summary)
		r.Post("/prices/refresh", h.RefreshPrices)
	})

	return r
}

type mergeRequestDTO struct {
	SessionID string    `json:"sessionId"`
	UserID    uuid.UUID `json:"userId"`
}

// Merge folds the guest cart into the cart of the authenticated user. userId and sessionId
// default to the caller's own identity.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())

	var req mergeRequestDTO
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == uuid.Nil {
		req.UserID = id.UserID
	}
	if req.SessionID == "" {
		req.SessionID = id.SessionID
	}

	res := h.actions.MergeGuestCart(r.Context(), id, req.UserID, req.SessionID)
	if action.IsSuccess(res) {
		// the guest session has no cart anymore
		http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Path: "/", MaxAge: -1, HttpOnly: true})
	}

	respond(w, res, http.StatusOK, func(m domain.MergeResult) any {
		return mergeResponse{MergedItems: m.MergedItems, Conflicts: m.Conflicts}
	})
}

func (h *Handler) ValidateCheckout(w http.ResponseWriter, r *http.Request) {
	res := h.actions.ValidateCheckout(r.Context(), IdentityFrom(r.Context()))

	respond(w, res, http.StatusOK, func(report service.CheckoutReport) any {
		return renderCheckout(report, h.currency)
	})
}

type addItemRequestDTO struct {
	SKUID    uuid.UUID `json:"skuId"`
	Quantity int       `json:"quantity"`
}

// AddItem issues a guest session cookie to anonymous callers that have none yet.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())

	var req addItemRequestDTO
	if !decode(w, r, &req) {
		return
	}

	if !id.IsAuthenticated() && id.SessionID == "" {
		id.SessionID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    id.SessionID,
			Path:     "/",
			MaxAge:   int(h.guestCartTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	res := h.actions.AddToCart(r.Context(), id, req.SKUID, req.Quantity)

	respond(w, res, http.StatusCreated, func(cart domain.Cart) any {
		return renderCart(cart, h.currency)
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	res := h.actions.CartSummary(r.Context(), IdentityFrom(r.Context()))

	respond(w, res, http.StatusOK, func(s service.CartSummary) any {
		return renderSummary(s, h.currency)
	})
}

func (h *Handler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	res := h.actions.RefreshPrices(r.Context(), IdentityFrom(r.Context()))

	respond(w, res, http.StatusOK, func(updated int64) any {
		return map[string]int64{"updated": updated}
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	// an empty body leaves dst zero
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, action.KindValidation, "invalid JSON body")
		return false
	}

	return true
}
