package order

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log"
	"time"

	"footware-store/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const orderColumns = `
id::text, order_number, customer_id, status,
subtotal::text, tax_amount::text, shipping_amount::text, discount_amount::text, total_amount::text,
shipping_address, billing_address, payment_method, payment_status,
coupon_id::text, created_at, updated_at, shipped_at, delivered_at
`

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if len(in.Lines) == 0 {
		return nil, errors.New("order requires at least one line")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Re-check and decrement stock for every line. The conditional update is
	// the check-and-decrement in one atomic statement; shortfalls are
	// collected across all lines before aborting so the caller can report
	// every offending variant. The earlier decrements roll back with the tx.
	var shortfalls []domain.StockShortfall
	for _, line := range in.Lines {
		cmd, err := tx.Exec(ctx, `
UPDATE shoe_variants
SET stock_quantity = stock_quantity - $2
WHERE id = $1 AND stock_quantity >= $2
`, line.VariantID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			var available int
			if err := tx.QueryRow(ctx, `
SELECT stock_quantity FROM shoe_variants WHERE id = $1
`, line.VariantID).Scan(&available); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, domain.ErrNotFound
				}
				return nil, err
			}
			shortfalls = append(shortfalls, domain.StockShortfall{
				VariantID: line.VariantID,
				Requested: line.Quantity,
				Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, &domain.InsufficientStockError{Shortfalls: shortfalls}
	}

	if in.CouponID != nil {
		cmd, err := tx.Exec(ctx, `
UPDATE coupons
SET used_count = used_count + 1
WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
`, *in.CouponID)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, domain.ErrCouponInvalid
		}
	}

	order, err := r.insertOrder(ctx, tx, in)
	if err != nil {
		return nil, err
	}

	for _, line := range in.Lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		var ol domain.OrderLine
		err := tx.QueryRow(ctx, `
INSERT INTO order_lines (order_id, variant_id, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text
`, order.ID, line.VariantID, line.Quantity, line.UnitPrice.String(), lineTotal.String()).Scan(&ol.ID)
		if err != nil {
			return nil, err
		}
		ol.OrderID = order.ID
		ol.VariantID = line.VariantID
		ol.Quantity = line.Quantity
		ol.UnitPrice = line.UnitPrice
		ol.TotalPrice = lineTotal
		order.Lines = append(order.Lines, ol)
	}

	if in.CartID != "" {
		if _, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE cart_id = $1
`, in.CartID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order_number=%s customer=%s total=%s", order.Number, in.CustomerID, in.TotalAmount.String())
	return order, nil
}

// insertOrder assigns a generated order number, retrying on the rare collision.
// Each attempt runs in a savepoint so a unique violation does not poison the
// enclosing transaction.
func (r *postgresRepo) insertOrder(ctx context.Context, tx pgx.Tx, in CreateInput) (*domain.Order, error) {
	const attempts = 5
	for i := 0; i < attempts; i++ {
		number, err := generateOrderNumber()
		if err != nil {
			return nil, err
		}

		inner, err := tx.Begin(ctx)
		if err != nil {
			return nil, err
		}

		var order domain.Order
		var createdAt, updatedAt time.Time
		err = inner.QueryRow(ctx, `
INSERT INTO orders (order_number, customer_id, status, subtotal, tax_amount, shipping_amount,
                    discount_amount, total_amount, shipping_address, billing_address,
                    payment_method, payment_status, coupon_id)
VALUES ($1, $2, 'pending', $3, $4, $5, $6, $7, $8, $9, $10, 'pending', $11)
RETURNING id::text, created_at, updated_at
`, number, in.CustomerID,
			in.Subtotal.String(), in.TaxAmount.String(), in.ShippingAmount.String(),
			in.DiscountAmount.String(), in.TotalAmount.String(),
			in.ShippingAddress, in.BillingAddress, in.PaymentMethod, in.CouponID,
		).Scan(&order.ID, &createdAt, &updatedAt)
		if err != nil {
			inner.Rollback(ctx)
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				r.logger.Printf("order repo: order number collision %s, retrying", number)
				continue
			}
			return nil, err
		}
		if err := inner.Commit(ctx); err != nil {
			return nil, err
		}

		order.Number = number
		order.CustomerID = in.CustomerID
		order.Status = domain.OrderPending
		order.Subtotal = in.Subtotal
		order.TaxAmount = in.TaxAmount
		order.ShippingAmount = in.ShippingAmount
		order.DiscountAmount = in.DiscountAmount
		order.TotalAmount = in.TotalAmount
		order.ShippingAddress = in.ShippingAddress
		order.BillingAddress = in.BillingAddress
		order.PaymentMethod = in.PaymentMethod
		order.PaymentStatus = domain.OrderPaymentPending
		order.CouponID = in.CouponID
		order.CreatedAt = createdAt
		order.UpdatedAt = updatedAt
		return &order, nil
	}
	return nil, errors.New("order number collision after retries")
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE order_number = $1
`, number)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC
`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Transition(ctx context.Context, in TransitionInput) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Compare-and-swap on the status the caller observed. A concurrent
	// transition that got there first makes this a zero-row update, never a
	// double apply.
	cmd, err := tx.Exec(ctx, `
UPDATE orders
SET status = $3,
    shipped_at = COALESCE($4, shipped_at),
    delivered_at = COALESCE($5, delivered_at),
    updated_at = now()
WHERE id = $1 AND status = $2
`, in.OrderID, in.From, in.To, in.ShippedAt, in.DeliveredAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var current domain.OrderStatus
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, in.OrderID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		return &domain.InvalidTransitionError{From: current, To: in.To}
	}

	// Restock rides the same transaction: the cancel and the stock return
	// commit together or not at all.
	for _, line := range in.Restock {
		if _, err := tx.Exec(ctx, `
UPDATE shoe_variants
SET stock_quantity = stock_quantity + $2
WHERE id = $1
`, line.VariantID, line.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, q, args...)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, variant_id::text, quantity, unit_price::text, total_price::text
FROM order_lines
WHERE order_id = $1
`, order.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		var unitPrice, totalPrice string
		if err := rows.Scan(&line.ID, &line.OrderID, &line.VariantID, &line.Quantity, &unitPrice, &totalPrice); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, err
		}
		if line.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order                                    domain.Order
		subtotal, tax, shipping, discount, total string
		paymentMethod                            *string
	)
	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.CustomerID,
		&order.Status,
		&subtotal,
		&tax,
		&shipping,
		&discount,
		&total,
		&order.ShippingAddress,
		&order.BillingAddress,
		&paymentMethod,
		&order.PaymentStatus,
		&order.CouponID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.ShippedAt,
		&order.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	if paymentMethod != nil {
		order.PaymentMethod = *paymentMethod
	}
	for dst, src := range map[*decimal.Decimal]string{
		&order.Subtotal:       subtotal,
		&order.TaxAmount:      tax,
		&order.ShippingAmount: shipping,
		&order.DiscountAmount: discount,
		&order.TotalAmount:    total,
	} {
		d, err := decimal.NewFromString(src)
		if err != nil {
			return nil, err
		}
		*dst = d
	}
	return &order, nil
}

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateOrderNumber produces a 9-character uppercase alphanumeric code.
func generateOrderNumber() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return string(buf), nil
}
