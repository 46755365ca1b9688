package shipping

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

func (r *postgresRepo) FeeForArea(ctx context.Context, areaID string) (decimal.Decimal, error) {
	const q = `
SELECT shipping_fee::text
FROM delivery_areas
WHERE id = $1 AND is_active
`
	var fee string
	if err := r.pool.QueryRow(ctx, q, areaID).Scan(&fee); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, err
	}
	return decimal.NewFromString(fee)
}
