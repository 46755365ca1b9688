package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// Terminal reports whether no further status transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderCancelled || s == OrderRefunded
}

// CanTransitionTo validates the fulfillment state machine:
// pending -> processing -> shipped -> delivered, with cancelled/refunded
// reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() || s == next {
		return false
	}
	switch next {
	case OrderCancelled, OrderRefunded:
		return true
	case OrderProcessing:
		return s == OrderPending
	case OrderShipped:
		return s == OrderProcessing
	case OrderDelivered:
		return s == OrderShipped
	default:
		return false
	}
}

// Order payment_status values.
const (
	OrderPaymentPending = "pending"
	OrderPaymentPaid    = "paid"
	OrderPaymentFailed  = "failed"
)

// Order is an immutable snapshot of a checked-out cart. Money fields are
// computed once at creation; only Status, PaymentStatus, and the
// shipped/delivered timestamps change afterwards.
type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"orderNumber"`
	CustomerID      string          `json:"customerId"`
	Status          OrderStatus     `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	ShippingAmount  decimal.Decimal `json:"shippingAmount"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	BillingAddress  string          `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	PaymentStatus   string          `json:"paymentStatus"`
	CouponID        *string         `json:"couponId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	Lines           []OrderLine     `json:"items,omitempty"`
}

// OrderLine freezes a cart line at order-creation time. UnitPrice is a copy,
// decoupled from any later variant price change.
type OrderLine struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"orderId"`
	VariantID  string          `json:"variantId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}
