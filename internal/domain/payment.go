package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Terminal reports whether the payment has a recorded final outcome. A
// terminal payment never changes status again.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// Payment tracks one STK push checkout request against an order. Identity is
// the gateway-assigned checkout request id.
type Payment struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"orderId"`
	CheckoutRequestID string          `json:"checkoutRequestId"`
	PhoneNumber       string          `json:"phoneNumber"`
	Amount            decimal.Decimal `json:"amount"`
	MpesaReceipt      *string         `json:"mpesaReceipt,omitempty"`
	TransactionDate   *string         `json:"transactionDate,omitempty"`
	Status            PaymentStatus   `json:"status"`
	RawResponse       []byte          `json:"-"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
