package coupon

import (
	"context"

	"footware-store/internal/domain"
)

// Repository reads coupons for validation. The used_count increment happens
// inside the order checkout transaction, guarded by the usage limit there.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
}
