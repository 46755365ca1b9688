package payment

import (
	"context"

	"footware-store/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateInput struct {
	OrderID           string
	CheckoutRequestID string
	PhoneNumber       string
	Amount            decimal.Decimal
	Raw               []byte
}

type MarkResultInput struct {
	CheckoutRequestID string
	Status            domain.PaymentStatus
	MpesaReceipt      *string
	TransactionDate   *string
	Raw               []byte
}

type CallbackRecord struct {
	CheckoutRequestID string
	Outcome           domain.PaymentStatus
	Conflict          bool
	Raw               []byte
}

type Repository interface {
	// Create persists a freshly initiated payment as PENDING. A duplicate
	// checkout request id reports domain.ErrAlreadyExists.
	Create(ctx context.Context, in CreateInput) (*domain.Payment, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error)
	// MarkResult applies the terminal outcome to a still-pending payment and,
	// in the same transaction, updates the linked order's payment_status
	// (advancing pending orders to processing on success). It reports false
	// without mutating anything if the payment is no longer pending.
	MarkResult(ctx context.Context, in MarkResultInput) (bool, error)
	// RecordCallback appends a received gateway callback verbatim to the audit
	// log. It never mutates payment state.
	RecordCallback(ctx context.Context, rec CallbackRecord) error
}
