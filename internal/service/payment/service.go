package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	"footware-store/internal/domain"
	"footware-store/internal/mpesa"
	paymentrepo "footware-store/internal/repository/payment"
)

type Service struct {
	payments paymentRepo
	gateway  gateway
	logger   *log.Logger
}

type paymentRepo interface {
	Create(ctx context.Context, in paymentrepo.CreateInput) (*domain.Payment, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error)
	MarkResult(ctx context.Context, in paymentrepo.MarkResultInput) (bool, error)
	RecordCallback(ctx context.Context, rec paymentrepo.CallbackRecord) error
}

type gateway interface {
	STKPush(ctx context.Context, in mpesa.STKPushRequest) (*mpesa.STKPushResponse, error)
}

func New(payments paymentRepo, gw gateway, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{payments: payments, gateway: gw, logger: logger}
}

// Initiate pushes an STK prompt for the order total and persists the Payment
// row keyed by the gateway's checkout request id before returning, so the
// asynchronous callback can never race ahead of its own record.
func (s *Service) Initiate(ctx context.Context, order *domain.Order, phoneNumber string) (*domain.Payment, error) {
	if strings.TrimSpace(phoneNumber) == "" {
		return nil, errors.New("phone number required")
	}
	if order.PaymentStatus == domain.OrderPaymentPaid {
		return nil, errors.New("order already paid")
	}

	resp, err := s.gateway.STKPush(ctx, mpesa.STKPushRequest{
		PhoneNumber:      phoneNumber,
		Amount:           order.TotalAmount,
		AccountReference: order.Number,
		Description:      "Order " + order.Number,
	})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	p, err := s.payments.Create(ctx, paymentrepo.CreateInput{
		OrderID:           order.ID,
		CheckoutRequestID: resp.CheckoutRequestID,
		PhoneNumber:       phoneNumber,
		Amount:            order.TotalAmount,
		Raw:               raw,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("payment service: initiated checkout_request_id=%s order=%s amount=%s",
		p.CheckoutRequestID, order.Number, p.Amount.String())
	return p, nil
}

// CallbackInput carries a parsed gateway callback. Raw is the verbatim
// payload and is persisted for audit regardless of outcome.
type CallbackInput struct {
	CheckoutRequestID string
	Outcome           domain.PaymentStatus
	MpesaReceipt      *string
	TransactionDate   *string
	Raw               []byte
}

// ApplyCallback reconciles an asynchronous gateway outcome against its
// payment. It is idempotent per checkout request id: a replay with the same
// outcome is a no-op; a replay that contradicts the recorded terminal outcome
// is audited and rejected with ErrConflictingCallback, never applied.
func (s *Service) ApplyCallback(ctx context.Context, in CallbackInput) (*domain.Payment, error) {
	if !in.Outcome.Terminal() {
		return nil, errors.New("callback outcome must be SUCCESS or FAILED")
	}

	p, err := s.payments.GetByCheckoutRequestID(ctx, in.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Malformed or hostile callback: keep the evidence, reject, touch
			// no order state.
			s.logger.Printf("payment service: callback for unknown checkout_request_id=%s", in.CheckoutRequestID)
			if recErr := s.record(ctx, in, false); recErr != nil {
				return nil, recErr
			}
			return nil, domain.ErrUnknownCheckoutRequest
		}
		return nil, err
	}

	if p.Status.Terminal() {
		return s.reconcileTerminal(ctx, p, in)
	}

	applied, err := s.payments.MarkResult(ctx, paymentrepo.MarkResultInput{
		CheckoutRequestID: in.CheckoutRequestID,
		Status:            in.Outcome,
		MpesaReceipt:      in.MpesaReceipt,
		TransactionDate:   in.TransactionDate,
		Raw:               in.Raw,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent delivery won the transition; re-read and treat this
		// one as the duplicate it is.
		p, err = s.payments.GetByCheckoutRequestID(ctx, in.CheckoutRequestID)
		if err != nil {
			return nil, err
		}
		return s.reconcileTerminal(ctx, p, in)
	}

	if err := s.record(ctx, in, false); err != nil {
		return nil, err
	}
	s.logger.Printf("payment service: callback applied checkout_request_id=%s outcome=%s", in.CheckoutRequestID, in.Outcome)
	return s.payments.GetByCheckoutRequestID(ctx, in.CheckoutRequestID)
}

func (s *Service) reconcileTerminal(ctx context.Context, p *domain.Payment, in CallbackInput) (*domain.Payment, error) {
	if p.Status == in.Outcome {
		// Duplicate delivery of the same outcome: audit it, change nothing.
		if err := s.record(ctx, in, false); err != nil {
			return nil, err
		}
		return p, nil
	}
	s.logger.Printf("payment service: conflicting callback checkout_request_id=%s stored=%s received=%s",
		in.CheckoutRequestID, p.Status, in.Outcome)
	if err := s.record(ctx, in, true); err != nil {
		return nil, err
	}
	return nil, domain.ErrConflictingCallback
}

func (s *Service) record(ctx context.Context, in CallbackInput, conflict bool) error {
	return s.payments.RecordCallback(ctx, paymentrepo.CallbackRecord{
		CheckoutRequestID: in.CheckoutRequestID,
		Outcome:           in.Outcome,
		Conflict:          conflict,
		Raw:               in.Raw,
	})
}
