package catalog

import (
	"context"
	"errors"
	"io"
	"log"

	"footware-store/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const variantColumns = `
v.id::text, v.shoe_id::text, v.color_id::text, v.size_id::text, v.sku,
v.stock_quantity, s.base_price::text, v.price_adjustment::text, v.is_active, v.created_at
`

func (r *postgresRepo) GetVariant(ctx context.Context, shoeID, colorID, sizeID string) (*domain.Variant, error) {
	const q = `
SELECT ` + variantColumns + `
FROM shoe_variants v
JOIN shoes s ON s.id = v.shoe_id
WHERE v.shoe_id = $1 AND v.color_id = $2 AND v.size_id = $3 AND v.is_active
`
	return r.scanVariant(r.pool.QueryRow(ctx, q, shoeID, colorID, sizeID))
}

func (r *postgresRepo) GetVariantByID(ctx context.Context, id string) (*domain.Variant, error) {
	const q = `
SELECT ` + variantColumns + `
FROM shoe_variants v
JOIN shoes s ON s.id = v.shoe_id
WHERE v.id = $1 AND v.is_active
`
	return r.scanVariant(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) CurrentStock(ctx context.Context, variantID string) (int, error) {
	const q = `SELECT stock_quantity FROM shoe_variants WHERE id = $1`
	var stock int
	if err := r.pool.QueryRow(ctx, q, variantID).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return stock, nil
}

func (r *postgresRepo) scanVariant(row pgx.Row) (*domain.Variant, error) {
	var (
		v          domain.Variant
		basePrice  string
		adjustment string
	)
	err := row.Scan(
		&v.ID,
		&v.ShoeID,
		&v.ColorID,
		&v.SizeID,
		&v.SKU,
		&v.StockQuantity,
		&basePrice,
		&adjustment,
		&v.Active,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog repo: scan variant error=%v", err)
		return nil, err
	}
	if v.BasePrice, err = decimal.NewFromString(basePrice); err != nil {
		return nil, err
	}
	if v.PriceAdjustment, err = decimal.NewFromString(adjustment); err != nil {
		return nil, err
	}
	return &v, nil
}
