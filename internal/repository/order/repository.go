package order

import (
	"context"
	"time"

	"footware-store/internal/domain"
	"github.com/shopspring/decimal"
)

type LineInput struct {
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CreateInput struct {
	CustomerID      string
	CartID          string
	Lines           []LineInput
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingAmount  decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
	CouponID        *string
}

// TransitionInput describes one status change. From is the status the caller
// observed; the write only lands if the row still carries it.
type TransitionInput struct {
	OrderID     string
	From        domain.OrderStatus
	To          domain.OrderStatus
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	Restock     []domain.OrderLine
}

type Repository interface {
	// Create runs the whole checkout as one transaction: stock re-check and
	// decrement per line, order number assignment, line snapshots, coupon
	// usage increment, and cart clearing. A failure at any step rolls back
	// all of it.
	Create(ctx context.Context, in CreateInput) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	// Transition applies a status change with a compare-and-swap on the
	// current status, so of two concurrent transitions only one lands.
	// Restock lines, when given, return their quantities to stock in the same
	// transaction. A lost swap reports InvalidTransitionError carrying the
	// status actually found.
	Transition(ctx context.Context, in TransitionInput) error
}
