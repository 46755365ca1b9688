package cart

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

func (r *postgresRepo) FindOrCreate(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, errors.New("cart owner must be exactly one of customer or session")
	}

	var q string
	var key string
	if owner.CustomerID != nil {
		key = *owner.CustomerID
		q = `
INSERT INTO carts (customer_id)
VALUES ($1)
ON CONFLICT (customer_id) WHERE customer_id IS NOT NULL
DO UPDATE SET updated_at = now()
RETURNING id::text
`
	} else {
		key = *owner.SessionKey
		q = `
INSERT INTO carts (session_key)
VALUES ($1)
ON CONFLICT (session_key) WHERE session_key IS NOT NULL
DO UPDATE SET updated_at = now()
RETURNING id::text
`
	}

	var id string
	if err := r.pool.QueryRow(ctx, q, key).Scan(&id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT id::text, customer_id, session_key, created_at, updated_at
FROM carts
WHERE id = $1
`
	return r.fetchCart(ctx, q, id)
}

func (r *postgresRepo) GetByOwner(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, domain.ErrNotFound
	}
	if owner.CustomerID != nil {
		return r.fetchCart(ctx, `
SELECT id::text, customer_id, session_key, created_at, updated_at
FROM carts
WHERE customer_id = $1
`, *owner.CustomerID)
	}
	return r.fetchCart(ctx, `
SELECT id::text, customer_id, session_key, created_at, updated_at
FROM carts
WHERE session_key = $1
`, *owner.SessionKey)
}

func (r *postgresRepo) AddLine(ctx context.Context, cartID, variantID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock the variant row so concurrent adds observe each other's cumulative
	// quantities instead of a stale stock read.
	var stock int
	err = tx.QueryRow(ctx, `
SELECT stock_quantity
FROM shoe_variants
WHERE id = $1 AND is_active
FOR UPDATE
`, variantID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	var lineID string
	var existingQty int
	err = tx.QueryRow(ctx, `
SELECT id::text, quantity
FROM cart_lines
WHERE cart_id = $1 AND variant_id = $2
`, cartID, variantID).Scan(&lineID, &existingQty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	cumulative := existingQty + quantity
	if cumulative > stock {
		return &domain.InsufficientStockError{Shortfalls: []domain.StockShortfall{
			{VariantID: variantID, Requested: cumulative, Available: stock},
		}}
	}

	if lineID != "" {
		if _, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE id = $2
`, cumulative, lineID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, variant_id, quantity)
VALUES ($1, $2, $3)
`, cartID, variantID, quantity); err != nil {
			return err
		}
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) UpdateLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE id = $1 AND cart_id = $2
`, lineID, cartID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		var variantID string
		err := tx.QueryRow(ctx, `
SELECT variant_id::text
FROM cart_lines
WHERE id = $1 AND cart_id = $2
`, lineID, cartID).Scan(&variantID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		var stock int
		if err := tx.QueryRow(ctx, `
SELECT stock_quantity
FROM shoe_variants
WHERE id = $1
FOR UPDATE
`, variantID).Scan(&stock); err != nil {
			return err
		}
		if quantity > stock {
			return &domain.InsufficientStockError{Shortfalls: []domain.StockShortfall{
				{VariantID: variantID, Requested: quantity, Available: stock},
			}}
		}

		if _, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE id = $2 AND cart_id = $3
`, quantity, lineID, cartID); err != nil {
			return err
		}
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveLine(ctx context.Context, cartID, lineID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM cart_lines
WHERE id = $1 AND cart_id = $2
`, lineID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, `
DELETE FROM cart_lines
WHERE cart_id = $1
`, cartID)
	return err
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, args...).Scan(
		&cart.ID,
		&cart.CustomerID,
		&cart.SessionKey,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	// Unit prices come from the variant join: cart pricing is always live.
	const linesQuery = `
SELECT cl.id::text, cl.cart_id::text, cl.variant_id::text, cl.quantity,
       (s.base_price + v.price_adjustment)::text, cl.added_at
FROM cart_lines cl
JOIN shoe_variants v ON v.id = cl.variant_id
JOIN shoes s ON s.id = v.shoe_id
WHERE cl.cart_id = $1
ORDER BY cl.added_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		var unitPrice string
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.VariantID,
			&line.Quantity,
			&unitPrice,
			&line.AddedAt,
		); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET updated_at = now()
WHERE id = $1
`, cartID)
	return err
}
