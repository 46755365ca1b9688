package payment

import (
	"context"
	"errors"
	"io"
	"log"

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

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Payment, error) {
	const q = `
INSERT INTO payments (order_id, checkout_request_id, phone_number, amount, status, raw_response)
VALUES ($1, $2, $3, $4, 'PENDING', $5)
RETURNING id::text, created_at, updated_at
`
	p := domain.Payment{
		OrderID:           in.OrderID,
		CheckoutRequestID: in.CheckoutRequestID,
		PhoneNumber:       in.PhoneNumber,
		Amount:            in.Amount,
		Status:            domain.PaymentPending,
		RawResponse:       in.Raw,
	}
	err := r.pool.QueryRow(ctx, q, in.OrderID, in.CheckoutRequestID, in.PhoneNumber, in.Amount.String(), in.Raw).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		// checkout_request_id is unique; a second insert means the same STK
		// push got persisted twice.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error) {
	const q = `
SELECT id::text, order_id::text, checkout_request_id, phone_number, amount::text,
       mpesa_receipt, transaction_date, status, raw_response, created_at, updated_at
FROM payments
WHERE checkout_request_id = $1
`
	var (
		p      domain.Payment
		amount string
	)
	err := r.pool.QueryRow(ctx, q, checkoutRequestID).Scan(
		&p.ID,
		&p.OrderID,
		&p.CheckoutRequestID,
		&p.PhoneNumber,
		&amount,
		&p.MpesaReceipt,
		&p.TransactionDate,
		&p.Status,
		&p.RawResponse,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) MarkResult(ctx context.Context, in MarkResultInput) (bool, error) {
	if !in.Status.Terminal() {
		return false, errors.New("mark result requires a terminal status")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// The status guard makes the transition single-shot: a concurrent
	// callback that already moved the payment off PENDING wins.
	var orderID string
	err = tx.QueryRow(ctx, `
UPDATE payments
SET status = $2,
    mpesa_receipt = COALESCE($3, mpesa_receipt),
    transaction_date = COALESCE($4, transaction_date),
    raw_response = $5,
    updated_at = now()
WHERE checkout_request_id = $1 AND status = 'PENDING'
RETURNING order_id::text
`, in.CheckoutRequestID, in.Status, in.MpesaReceipt, in.TransactionDate, in.Raw).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	if in.Status == domain.PaymentSuccess {
		// A completed payment advances fulfillment from pending to processing.
		if _, err := tx.Exec(ctx, `
UPDATE orders
SET payment_status = 'paid',
    status = CASE WHEN status = 'pending' THEN 'processing' ELSE status END,
    updated_at = now()
WHERE id = $1
`, orderID); err != nil {
			return false, err
		}
	} else {
		// Failed payments leave order status for manual handling so the
		// shopper can retry.
		if _, err := tx.Exec(ctx, `
UPDATE orders
SET payment_status = 'failed',
    updated_at = now()
WHERE id = $1
`, orderID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *postgresRepo) RecordCallback(ctx context.Context, rec CallbackRecord) error {
	const q = `
INSERT INTO payment_callbacks (checkout_request_id, outcome, conflict, raw_payload)
VALUES ($1, $2, $3, $4)
`
	if _, err := r.pool.Exec(ctx, q, rec.CheckoutRequestID, rec.Outcome, rec.Conflict, rec.Raw); err != nil {
		r.logger.Printf("payment repo: record callback checkout_request_id=%s error=%v", rec.CheckoutRequestID, err)
		return err
	}
	return nil
}
