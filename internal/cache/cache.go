package cache

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// OwnerTag scopes cached reads of one cart owner.
func OwnerTag(owner domain.Owner) string {
	if owner.IsGuest() {
		return fmt.Sprintf("cart:session:%s", owner.SessionID)
	}
	return fmt.Sprintf("cart:user:%s", owner.UserID)
}

// ProductTag scopes cart-count reads that depend on a product.
func ProductTag(listingID uuid.UUID) string {
	return fmt.Sprintf("product:%s:cart-count", listingID)
}

func cacheKey(key string) string {
	return fmt.Sprintf("cache:%s", key)
}

func tagKey(tag string) string {
	return fmt.Sprintf("tag:%s", tag)
}
