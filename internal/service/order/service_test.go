package order

import (
	"context"
	"testing"
	"time"

	"footware-store/internal/domain"
	orderrepo "footware-store/internal/repository/order"
	"footware-store/internal/service/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCarts struct {
	cart *domain.Cart
}

func (s *stubCarts) GetByOwner(_ context.Context, _ domain.CartOwner) (*domain.Cart, error) {
	if s.cart == nil {
		return nil, domain.ErrNotFound
	}
	return s.cart, nil
}

type stubOrders struct {
	order          *domain.Order
	lastCreate     orderrepo.CreateInput
	createCalled   bool
	lastTransition orderrepo.TransitionInput
	transitionErr  error
}

func (s *stubOrders) Create(_ context.Context, in orderrepo.CreateInput) (*domain.Order, error) {
	s.createCalled = true
	s.lastCreate = in
	return s.order, nil
}

func (s *stubOrders) GetByNumber(_ context.Context, _ string) (*domain.Order, error) {
	if s.order == nil {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrders) ListByCustomer(_ context.Context, _ string) ([]domain.Order, error) {
	if s.order == nil {
		return nil, nil
	}
	return []domain.Order{*s.order}, nil
}

func (s *stubOrders) Transition(_ context.Context, in orderrepo.TransitionInput) error {
	s.lastTransition = in
	if s.transitionErr != nil {
		return s.transitionErr
	}
	s.order.Status = in.To
	return nil
}

type stubPricer struct {
	totals     pricing.Totals
	err        error
	pricedCart domain.Cart
}

func (s *stubPricer) PriceCart(_ context.Context, cart domain.Cart, _, _ string) (pricing.Totals, error) {
	s.pricedCart = cart
	return s.totals, s.err
}

func twoLineCart() *domain.Cart {
	return &domain.Cart{
		ID: "cart-1",
		Lines: []domain.CartLine{
			{ID: "l1", VariantID: "v1", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
			{ID: "l2", VariantID: "v2", Quantity: 1, UnitPrice: decimal.NewFromInt(2000)},
		},
	}
}

func TestCheckoutFreezesCartLines(t *testing.T) {
	coupon := &domain.Coupon{ID: "coupon-1", Code: "SAVE10"}
	orders := &stubOrders{order: &domain.Order{ID: "order-1", Number: "ABC123XYZ", TotalAmount: decimal.NewFromInt(4800)}}
	pricer := &stubPricer{totals: pricing.Totals{
		Subtotal: decimal.NewFromInt(5000),
		Discount: decimal.NewFromInt(500),
		Shipping: decimal.NewFromInt(300),
		Total:    decimal.NewFromInt(4800),
		Coupon:   coupon,
	}}
	svc := New(&stubCarts{cart: twoLineCart()}, orders, pricer, nil)

	order, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:      "cust-1",
		CouponCode:      "SAVE10",
		ShippingAddress: "Moi Avenue 12, Nairobi",
		PaymentMethod:   "mpesa",
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123XYZ", order.Number)

	in := orders.lastCreate
	require.Len(t, in.Lines, 2)
	assert.Equal(t, "v1", in.Lines[0].VariantID)
	assert.Equal(t, 2, in.Lines[0].Quantity)
	assert.True(t, in.Lines[0].UnitPrice.Equal(decimal.NewFromInt(1500)))
	assert.True(t, in.Subtotal.Equal(decimal.NewFromInt(5000)))
	assert.True(t, in.DiscountAmount.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, in.CouponID)
	assert.Equal(t, "coupon-1", *in.CouponID)
	assert.Equal(t, "Moi Avenue 12, Nairobi", in.BillingAddress, "billing defaults to shipping")
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc := New(&stubCarts{}, &stubOrders{}, &stubPricer{}, nil)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:      "cust-1",
		ShippingAddress: "somewhere",
	})
	assert.ErrorIs(t, err, ErrCartEmpty)

	svc = New(&stubCarts{cart: &domain.Cart{ID: "cart-1"}}, &stubOrders{}, &stubPricer{}, nil)
	_, err = svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:      "cust-1",
		ShippingAddress: "somewhere",
	})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckoutPricingErrorAborts(t *testing.T) {
	orders := &stubOrders{}
	svc := New(&stubCarts{cart: twoLineCart()}, orders, &stubPricer{err: domain.ErrCouponInvalid}, nil)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:      "cust-1",
		CouponCode:      "BOGUS",
		ShippingAddress: "somewhere",
	})
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
	assert.False(t, orders.createCalled)
}

func TestTransitionStampsShippedAt(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{ID: "order-1", Number: "N1", Status: domain.OrderProcessing}}
	svc := New(&stubCarts{}, orders, &stubPricer{}, nil)
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Transition(context.Background(), "N1", domain.OrderShipped)
	require.NoError(t, err)
	require.NotNil(t, orders.lastTransition.ShippedAt)
	assert.Equal(t, fixed, *orders.lastTransition.ShippedAt)
	assert.Nil(t, orders.lastTransition.DeliveredAt)
	assert.Equal(t, domain.OrderProcessing, orders.lastTransition.From)
}

func TestTransitionIllegal(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{ID: "order-1", Number: "N1", Status: domain.OrderDelivered}}
	svc := New(&stubCarts{}, orders, &stubPricer{}, nil)

	_, err := svc.Transition(context.Background(), "N1", domain.OrderShipped)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.OrderDelivered, transitionErr.From)
	assert.Equal(t, domain.OrderShipped, transitionErr.To)
}

func TestTransitionCancelRestocksPendingOrder(t *testing.T) {
	lines := []domain.OrderLine{{ID: "ol1", VariantID: "v1", Quantity: 2}}
	orders := &stubOrders{order: &domain.Order{ID: "order-1", Number: "N1", Status: domain.OrderPending, Lines: lines}}
	svc := New(&stubCarts{}, orders, &stubPricer{}, nil)

	_, err := svc.Transition(context.Background(), "N1", domain.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, lines, orders.lastTransition.Restock)
	assert.Equal(t, domain.OrderPending, orders.lastTransition.From)
}

func TestTransitionCancelShippedOrderDoesNotRestock(t *testing.T) {
	lines := []domain.OrderLine{{ID: "ol1", VariantID: "v1", Quantity: 2}}
	orders := &stubOrders{order: &domain.Order{ID: "order-1", Number: "N1", Status: domain.OrderShipped, Lines: lines}}
	svc := New(&stubCarts{}, orders, &stubPricer{}, nil)

	_, err := svc.Transition(context.Background(), "N1", domain.OrderCancelled)
	require.NoError(t, err)
	assert.Nil(t, orders.lastTransition.Restock)
}

func TestTransitionConcurrentWinnerSurfacesConflict(t *testing.T) {
	// Another transition landed between the read and the write; the repository
	// reports the status it actually found and nothing is re-applied.
	raceErr := &domain.InvalidTransitionError{From: domain.OrderCancelled, To: domain.OrderRefunded}
	orders := &stubOrders{
		order:         &domain.Order{ID: "order-1", Number: "N1", Status: domain.OrderPending},
		transitionErr: raceErr,
	}
	svc := New(&stubCarts{}, orders, &stubPricer{}, nil)

	_, err := svc.Transition(context.Background(), "N1", domain.OrderRefunded)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.OrderCancelled, transitionErr.From)
	assert.Equal(t, domain.OrderPending, orders.order.Status, "stub order untouched when the swap is lost")
}

func TestQuoteDoesNotCreateOrder(t *testing.T) {
	orders := &stubOrders{}
	pricer := &stubPricer{totals: pricing.Totals{Subtotal: decimal.NewFromInt(5000), Total: decimal.NewFromInt(5000)}}
	svc := New(&stubCarts{cart: twoLineCart()}, orders, pricer, nil)

	totals, err := svc.Quote(context.Background(), "cust-1", "", "")
	require.NoError(t, err)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(5000)))
	assert.False(t, orders.createCalled)
}
