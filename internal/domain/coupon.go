package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

type Coupon struct {
	ID              string           `json:"id"`
	Code            string           `json:"code"`
	Kind            DiscountKind     `json:"discountType"`
	Value           decimal.Decimal  `json:"discountValue"`
	MinimumAmount   *decimal.Decimal `json:"minimumAmount,omitempty"`
	MaximumDiscount *decimal.Decimal `json:"maximumDiscount,omitempty"`
	UsageLimit      *int             `json:"usageLimit,omitempty"`
	UsedCount       int              `json:"usedCount"`
	ValidFrom       time.Time        `json:"validFrom"`
	ValidTo         time.Time        `json:"validTo"`
	Active          bool             `json:"active"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Usable reports whether the coupon can be applied at the given instant:
// active, inside its validity window, and not usage-exhausted.
func (c Coupon) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}
