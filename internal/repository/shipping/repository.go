package shipping

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// FeeForArea returns the delivery area's configured shipping fee.
	FeeForArea(ctx context.Context, areaID string) (decimal.Decimal, error)
}
