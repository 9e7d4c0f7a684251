package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ListingStatus string

const (
	ListingDraft    ListingStatus = "DRAFT"
	ListingPublic   ListingStatus = "PUBLIC"
	ListingArchived ListingStatus = "ARCHIVED"
)

// Owner identifies a cart. Exactly one of UserID and SessionID is set.
type Owner struct {
	UserID    uuid.UUID
	SessionID string
}

func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: userID}
}

func SessionOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

func (o Owner) IsGuest() bool {
	return o.SessionID != ""
}

func (o Owner) Validate() error {
	hasUser := o.UserID != uuid.Nil
	hasSession := o.SessionID != ""

	switch {
	case hasUser && hasSession:
		return &ValidationError{Field: "owner", Message: "cart owner must be either a user or a session, not both"}
	case !hasUser && !hasSession:
		return &ValidationError{Field: "owner", Message: "cart owner is empty"}
	}

	return nil
}

func (o Owner) String() string {
	if o.IsGuest() {
		return fmt.Sprintf("session:%s", o.SessionID)
	}
	return fmt.Sprintf("user:%s", o.UserID)
}

type Cart struct {
	ID    uuid.UUID
	Owner Owner
	// zero for user carts
	ExpiresAt time.Time
	Items     []LineItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Cart) Item(skuID uuid.UUID) (LineItem, bool) {
	for _, item := range c.Items {
		if item.SKUID == skuID {
			return item, true
		}
	}
	return LineItem{}, false
}

// IsExpired is always false for user carts.
func (c Cart) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

type LineItem struct {
	SKUID      uuid.UUID
	Quantity   int
	PriceAtAdd int64
	SKU        SKUSnapshot

	CreatedAt time.Time
}

// SKUSnapshot is the live catalog view of a purchasable variant.
type SKUSnapshot struct {
	ID            uuid.UUID
	ListingID     uuid.UUID
	Inventory     int
	IsActive      bool
	ListingStatus ListingStatus
	Price         int64
	// zero when the variant has no compare-at price
	CompareAtPrice int64
}

func (s SKUSnapshot) IsPurchasable() bool {
	return s.IsActive && s.ListingStatus == ListingPublic
}
