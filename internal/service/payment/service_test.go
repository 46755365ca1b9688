package payment

import (
	"context"
	"errors"
	"testing"

	"footware-store/internal/domain"
	"footware-store/internal/mpesa"
	paymentrepo "footware-store/internal/repository/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPayments struct {
	stored      *domain.Payment
	createErr   error
	lastCreate  paymentrepo.CreateInput
	markApplied bool
	markErr     error
	onMark      func()
	lastMark    paymentrepo.MarkResultInput
	callbacks   []paymentrepo.CallbackRecord
}

func (s *stubPayments) Create(_ context.Context, in paymentrepo.CreateInput) (*domain.Payment, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.lastCreate = in
	s.stored = &domain.Payment{
		ID:                "pay-1",
		OrderID:           in.OrderID,
		CheckoutRequestID: in.CheckoutRequestID,
		PhoneNumber:       in.PhoneNumber,
		Amount:            in.Amount,
		Status:            domain.PaymentPending,
	}
	return s.stored, nil
}

func (s *stubPayments) GetByCheckoutRequestID(_ context.Context, _ string) (*domain.Payment, error) {
	if s.stored == nil {
		return nil, domain.ErrNotFound
	}
	return s.stored, nil
}

func (s *stubPayments) MarkResult(_ context.Context, in paymentrepo.MarkResultInput) (bool, error) {
	if s.markErr != nil {
		return false, s.markErr
	}
	s.lastMark = in
	if s.onMark != nil {
		s.onMark()
	}
	if s.markApplied {
		s.stored.Status = in.Status
		s.stored.MpesaReceipt = in.MpesaReceipt
		s.stored.TransactionDate = in.TransactionDate
	}
	return s.markApplied, nil
}

func (s *stubPayments) RecordCallback(_ context.Context, rec paymentrepo.CallbackRecord) error {
	s.callbacks = append(s.callbacks, rec)
	return nil
}

type stubGateway struct {
	resp    *mpesa.STKPushResponse
	err     error
	lastReq mpesa.STKPushRequest
}

func (s *stubGateway) STKPush(_ context.Context, in mpesa.STKPushRequest) (*mpesa.STKPushResponse, error) {
	s.lastReq = in
	return s.resp, s.err
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:            "order-1",
		Number:        "ABC123XYZ",
		TotalAmount:   decimal.NewFromInt(4700),
		PaymentStatus: domain.OrderPaymentPending,
	}
}

func TestInitiatePersistsBeforeReturning(t *testing.T) {
	repo := &stubPayments{}
	gw := &stubGateway{resp: &mpesa.STKPushResponse{
		MerchantRequestID: "mr-1",
		CheckoutRequestID: "ws_CO_123",
		ResponseCode:      "0",
	}}
	svc := New(repo, gw, nil)

	p, err := svc.Initiate(context.Background(), testOrder(), "254700000001")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_123", p.CheckoutRequestID)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, "ws_CO_123", repo.lastCreate.CheckoutRequestID)
	assert.True(t, repo.lastCreate.Amount.Equal(decimal.NewFromInt(4700)))
	assert.Equal(t, "ABC123XYZ", gw.lastReq.AccountReference)
}

func TestInitiateGatewayFailure(t *testing.T) {
	repo := &stubPayments{}
	svc := New(repo, &stubGateway{err: errors.New("gateway timeout")}, nil)

	_, err := svc.Initiate(context.Background(), testOrder(), "254700000001")
	require.Error(t, err)
	assert.Nil(t, repo.stored, "no payment row without a checkout request id")
}

func TestInitiateAlreadyPaidOrder(t *testing.T) {
	order := testOrder()
	order.PaymentStatus = domain.OrderPaymentPaid
	svc := New(&stubPayments{}, &stubGateway{}, nil)

	_, err := svc.Initiate(context.Background(), order, "254700000001")
	require.Error(t, err)
}

func pendingPayment() *domain.Payment {
	return &domain.Payment{
		ID:                "pay-1",
		OrderID:           "order-1",
		CheckoutRequestID: "ws_CO_123",
		Status:            domain.PaymentPending,
		Amount:            decimal.NewFromInt(4700),
	}
}

func TestApplyCallbackSuccess(t *testing.T) {
	repo := &stubPayments{stored: pendingPayment(), markApplied: true}
	svc := New(repo, &stubGateway{}, nil)

	receipt := "QK12AB34CD"
	p, err := svc.ApplyCallback(context.Background(), CallbackInput{
		CheckoutRequestID: "ws_CO_123",
		Outcome:           domain.PaymentSuccess,
		MpesaReceipt:      &receipt,
		Raw:               []byte(`{"ResultCode":0}`),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, p.Status)
	require.NotNil(t, p.MpesaReceipt)
	assert.Equal(t, receipt, *p.MpesaReceipt)
	require.Len(t, repo.callbacks, 1)
	assert.False(t, repo.callbacks[0].Conflict)
}

func TestApplyCallbackDuplicateSameOutcome(t *testing.T) {
	stored := pendingPayment()
	stored.Status = domain.PaymentSuccess
	repo := &stubPayments{stored: stored}
	svc := New(repo, &stubGateway{}, nil)

	p, err := svc.ApplyCallback(context.Background(), CallbackInput{
		CheckoutRequestID: "ws_CO_123",
		Outcome:           domain.PaymentSuccess,
		Raw:               []byte(`{"ResultCode":0}`),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, p.Status)
	require.Len(t, repo.callbacks, 1, "duplicate still audited")
	assert.False(t, repo.callbacks[0].Conflict)
}

func TestApplyCallbackConflictingOutcome(t *testing.T) {
	stored := pendingPayment()
	stored.Status = domain.PaymentSuccess
	repo := &stubPayments{stored: stored}
	svc := New(repo, &stubGateway{}, nil)

	_, err := svc.ApplyCallback(context.Background(), CallbackInput{
		CheckoutRequestID: "ws_CO_123",
		Outcome:           domain.PaymentFailed,
		Raw:               []byte(`{"ResultCode":1032}`),
	})
	assert.ErrorIs(t, err, domain.ErrConflictingCallback)
	assert.Equal(t, domain.PaymentSuccess, repo.stored.Status, "stored outcome untouched")
	require.Len(t, repo.callbacks, 1)
	assert.True(t, repo.callbacks[0].Conflict)
}

func TestApplyCallbackLostRaceReconciles(t *testing.T) {
	repo := &stubPayments{stored: pendingPayment(), markApplied: false}
	// The conditional update reports no row transitioned; by re-read time a
	// concurrent delivery has stored the same outcome.
	repo.onMark = func() { repo.stored.Status = domain.PaymentFailed }
	svc := New(repo, &stubGateway{}, nil)

	p, err := svc.ApplyCallback(context.Background(), CallbackInput{
		CheckoutRequestID: "ws_CO_123",
		Outcome:           domain.PaymentFailed,
		Raw:               []byte(`{"ResultCode":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, p.Status)
}

func TestApplyCallbackUnknownCheckoutRequest(t *testing.T) {
	repo := &stubPayments{}
	svc := New(repo, &stubGateway{}, nil)

	_, err := svc.ApplyCallback(context.Background(), CallbackInput{
		CheckoutRequestID: "ws_CO_missing",
		Outcome:           domain.PaymentSuccess,
		Raw:               []byte(`{}`),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownCheckoutRequest)
	require.Len(t, repo.callbacks, 1, "evidence kept")
}

func TestApplyCallbackNonTerminalOutcome(t *testing.T) {
	svc := New(&stubPayments{stored: pendingPayment()}, &stubGateway{}, nil)

	_, err := svc.ApplyCallback(context.Background(), CallbackInput{
		CheckoutRequestID: "ws_CO_123",
		Outcome:           domain.PaymentPending,
	})
	require.Error(t, err)
}
