package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"footware-store/internal/domain"
	"github.com/shopspring/decimal"
)

type couponSource interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

type shippingResolver interface {
	FeeForArea(ctx context.Context, areaID string) (decimal.Decimal, error)
}

// TaxFunc computes tax on the discounted subtotal. The default policy charges
// no tax; the field exists so a rate can be configured without touching the
// engine.
type TaxFunc func(taxable decimal.Decimal) decimal.Decimal

func ZeroTax(decimal.Decimal) decimal.Decimal { return decimal.Zero }

// FlatRateTax returns a TaxFunc applying the given fractional rate, e.g. 0.16.
func FlatRateTax(rate decimal.Decimal) TaxFunc {
	return func(taxable decimal.Decimal) decimal.Decimal {
		return taxable.Mul(rate).Round(2)
	}
}

// Totals is the priced breakdown for a cart or order snapshot.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Coupon   *domain.Coupon  `json:"-"`
}

// Engine computes cart totals. The computation is deterministic given the
// cart, coupon, and shipping fee; no state is kept between calls.
type Engine struct {
	coupons  couponSource
	shipping shippingResolver
	tax      TaxFunc
	now      func() time.Time
}

func New(coupons couponSource, shipping shippingResolver, tax TaxFunc) *Engine {
	if tax == nil {
		tax = ZeroTax
	}
	return &Engine{coupons: coupons, shipping: shipping, tax: tax, now: time.Now}
}

// PriceCart computes subtotal, discount, shipping, tax, and grand total.
// couponCode and deliveryAreaID are optional (empty string skips them).
func (e *Engine) PriceCart(ctx context.Context, cart domain.Cart, couponCode, deliveryAreaID string) (Totals, error) {
	subtotal := cart.Totals().TotalPrice

	var (
		discount = decimal.Zero
		coupon   *domain.Coupon
	)
	if code := strings.TrimSpace(couponCode); code != "" {
		c, err := e.coupons.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return Totals{}, domain.ErrCouponInvalid
			}
			return Totals{}, err
		}
		if !c.Usable(e.now()) {
			return Totals{}, domain.ErrCouponInvalid
		}
		if c.MinimumAmount != nil && subtotal.LessThan(*c.MinimumAmount) {
			return Totals{}, domain.ErrCouponBelowMinimum
		}
		discount = Discount(*c, subtotal)
		coupon = c
	}

	shipping := decimal.Zero
	if areaID := strings.TrimSpace(deliveryAreaID); areaID != "" {
		fee, err := e.shipping.FeeForArea(ctx, areaID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return Totals{}, err
		}
		if err == nil {
			shipping = fee
		}
	}

	tax := e.tax(subtotal.Sub(discount))

	total := subtotal.Sub(discount).Add(shipping).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Tax:      tax,
		Total:    total,
		Coupon:   coupon,
	}, nil
}

var oneHundred = decimal.NewFromInt(100)

// Discount computes the coupon's raw discount, clamped to the coupon's
// maximum and to the subtotal (a discount never exceeds what it discounts).
func Discount(c domain.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var raw decimal.Decimal
	switch c.Kind {
	case domain.DiscountPercentage:
		raw = subtotal.Mul(c.Value).Div(oneHundred).Round(2)
	case domain.DiscountFixed:
		raw = c.Value
	default:
		return decimal.Zero
	}
	if c.MaximumDiscount != nil && raw.GreaterThan(*c.MaximumDiscount) {
		raw = *c.MaximumDiscount
	}
	if raw.GreaterThan(subtotal) {
		raw = subtotal
	}
	if raw.IsNegative() {
		return decimal.Zero
	}
	return raw
}
