package domain

import "github.com/google/uuid"

// Identity is the caller of an action: an authenticated user, a guest session, or both
// right after login.
type Identity struct {
	UserID    uuid.UUID
	SessionID string
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != uuid.Nil
}

// Owner is the cart the caller acts on. Authenticated callers always act on their user cart.
func (i Identity) Owner() Owner {
	if i.IsAuthenticated() {
		return UserOwner(i.UserID)
	}
	return SessionOwner(i.SessionID)
}
