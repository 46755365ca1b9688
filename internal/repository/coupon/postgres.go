package coupon

import (
	"context"
	"errors"

	"footware-store/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	const q = `
SELECT id::text, code, discount_type, discount_value::text,
       minimum_amount::text, maximum_discount::text,
       usage_limit, used_count, valid_from, valid_to, is_active, created_at
FROM coupons
WHERE code = $1
`
	var (
		c          domain.Coupon
		value      string
		minAmount  *string
		maxAmount  *string
		usageLimit *int
	)
	err := r.pool.QueryRow(ctx, q, code).Scan(
		&c.ID,
		&c.Code,
		&c.Kind,
		&value,
		&minAmount,
		&maxAmount,
		&usageLimit,
		&c.UsedCount,
		&c.ValidFrom,
		&c.ValidTo,
		&c.Active,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if c.Value, err = decimal.NewFromString(value); err != nil {
		return nil, err
	}
	if minAmount != nil {
		d, err := decimal.NewFromString(*minAmount)
		if err != nil {
			return nil, err
		}
		c.MinimumAmount = &d
	}
	if maxAmount != nil {
		d, err := decimal.NewFromString(*maxAmount)
		if err != nil {
			return nil, err
		}
		c.MaximumDiscount = &d
	}
	c.UsageLimit = usageLimit
	return &c, nil
}
