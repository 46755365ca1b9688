package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartOwner identifies who a cart belongs to: exactly one of an authenticated
// customer or an anonymous session key.
type CartOwner struct {
	CustomerID *string
	SessionKey *string
}

func (o CartOwner) Valid() bool {
	return (o.CustomerID != nil) != (o.SessionKey != nil)
}

type Cart struct {
	ID         string     `json:"id"`
	CustomerID *string    `json:"customerId,omitempty"`
	SessionKey *string    `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Lines      []CartLine `json:"lineItems,omitempty"`
}

// CartLine holds one variant in a cart. UnitPrice is not stored: it is the
// variant's current price, resolved at read time, so cart totals follow
// catalog price changes until checkout.
type CartLine struct {
	ID        string          `json:"id"`
	CartID    string          `json:"cartId"`
	VariantID string          `json:"variantId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	AddedAt   time.Time       `json:"addedAt"`
}

func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartTotals struct {
	ItemCount  int             `json:"itemCount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Totals aggregates the cart's lines: item count is the sum of quantities,
// total price the sum of line totals.
func (c Cart) Totals() CartTotals {
	var t CartTotals
	t.TotalPrice = decimal.Zero
	for _, l := range c.Lines {
		t.ItemCount += l.Quantity
		t.TotalPrice = t.TotalPrice.Add(l.Total())
	}
	return t
}
