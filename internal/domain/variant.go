package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant is a purchasable (shoe, color, size) combination with its own stock
// and price. The tuple is unique per shoe.
type Variant struct {
	ID              string          `json:"id"`
	ShoeID          string          `json:"shoeId"`
	ColorID         string          `json:"colorId"`
	SizeID          string          `json:"sizeId"`
	SKU             string          `json:"sku"`
	StockQuantity   int             `json:"stock"`
	BasePrice       decimal.Decimal `json:"-"`
	PriceAdjustment decimal.Decimal `json:"-"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// FinalPrice is the shoe's base price plus the variant adjustment.
func (v Variant) FinalPrice() decimal.Decimal {
	return v.BasePrice.Add(v.PriceAdjustment)
}

func (v Variant) InStock() bool {
	return v.StockQuantity > 0
}
