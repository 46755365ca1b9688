package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")

	// ErrCouponInvalid covers unknown, inactive, expired, or exhausted coupons.
	ErrCouponInvalid = errors.New("coupon invalid")
	// ErrCouponBelowMinimum indicates the cart subtotal is below the coupon's minimum amount.
	ErrCouponBelowMinimum = errors.New("coupon below minimum amount")

	// ErrUnknownCheckoutRequest indicates a payment callback for a checkout
	// request that was never initiated.
	ErrUnknownCheckoutRequest = errors.New("unknown checkout request")
	// ErrConflictingCallback indicates a callback that contradicts an already
	// recorded terminal payment outcome.
	ErrConflictingCallback = errors.New("conflicting payment callback")
)

// StockShortfall describes one variant whose available stock cannot cover the
// requested quantity.
type StockShortfall struct {
	VariantID string
	Requested int
	Available int
}

// InsufficientStockError is returned when a stock check fails. It carries every
// offending line so callers can surface the available quantities.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortfalls) == 1 {
		s := e.Shortfalls[0]
		return fmt.Sprintf("insufficient stock for variant %s: requested %d, available %d", s.VariantID, s.Requested, s.Available)
	}
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.VariantID, s.Requested, s.Available))
	}
	return "insufficient stock for variants: " + strings.Join(parts, ", ")
}

// InvalidTransitionError is returned for an order status change the state
// machine does not permit.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition %s -> %s", e.From, e.To)
}
