package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnauthorized    = errors.New("not authorized")
	ErrUserNotFound    = errors.New("user not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrCartEmpty       = errors.New("cart is empty")
	ErrCartFull        = errors.New("cart item limit reached")
	ErrSKUNotFound     = errors.New("sku not found")
	ErrItemUnavailable = errors.New("item is unavailable")
	ErrOutOfStock      = errors.New("not enough stock")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}
