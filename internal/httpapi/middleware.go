package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/action"
	"github.com/nikolayk812/atelier-cart/internal/domain"
)

const (
	UserIDHeader      = "X-User-ID"
	SessionIDHeader   = "X-Session-ID"
	SessionCookieName = "cart_session"
)

type identityKey struct{}

// Identify reads the caller identity. X-User-ID is trusted: it is set by the auth gateway
// after token validation and stripped from client requests.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id domain.Identity

		if raw := r.Header.Get(UserIDHeader); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				writeFailure(w, action.KindUnauthorized, domain.ErrUnauthorized.Error())
				return
			}
			id.UserID = userID
		}

		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			id.SessionID = cookie.Value
		} else {
			id.SessionID = r.Header.Get(SessionIDHeader)
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey{}).(domain.Identity)
	return id
}
