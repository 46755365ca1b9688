package order

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"footware-store/internal/domain"
	orderrepo "footware-store/internal/repository/order"
	"footware-store/internal/service/pricing"
)

type Service struct {
	carts  cartRepo
	orders orderRepo
	pricer pricer
	logger *log.Logger
	now    func() time.Time
}

type cartRepo interface {
	GetByOwner(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
}

type orderRepo interface {
	Create(ctx context.Context, in orderrepo.CreateInput) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	Transition(ctx context.Context, in orderrepo.TransitionInput) error
}

type pricer interface {
	PriceCart(ctx context.Context, cart domain.Cart, couponCode, deliveryAreaID string) (pricing.Totals, error)
}

func New(carts cartRepo, orders orderRepo, pricer pricer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{carts: carts, orders: orders, pricer: pricer, logger: logger, now: time.Now}
}

var ErrCartEmpty = errors.New("cart is empty")

type CheckoutInput struct {
	CustomerID      string
	CouponCode      string
	DeliveryAreaID  string
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
}

// Checkout prices the customer's cart and converts it into an immutable
// order. Stock re-validation, stock decrement, order number assignment, line
// snapshots, coupon usage, and cart clearing all commit or roll back as one
// unit inside the order repository.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, errors.New("customer required")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, errors.New("shipping address required")
	}
	billing := in.BillingAddress
	if strings.TrimSpace(billing) == "" {
		billing = in.ShippingAddress
	}

	customerID := in.CustomerID
	cart, err := s.carts.GetByOwner(ctx, domain.CartOwner{CustomerID: &customerID})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCartEmpty
		}
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrCartEmpty
	}

	totals, err := s.pricer.PriceCart(ctx, *cart, in.CouponCode, in.DeliveryAreaID)
	if err != nil {
		return nil, err
	}

	// Freeze the lines at their current prices. From here on the order is the
	// historical record; later catalog price changes do not touch it.
	lines := make([]orderrepo.LineInput, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, orderrepo.LineInput{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	var couponID *string
	if totals.Coupon != nil {
		couponID = &totals.Coupon.ID
	}

	order, err := s.orders.Create(ctx, orderrepo.CreateInput{
		CustomerID:      in.CustomerID,
		CartID:          cart.ID,
		Lines:           lines,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.Tax,
		ShippingAmount:  totals.Shipping,
		DiscountAmount:  totals.Discount,
		TotalAmount:     totals.Total,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   in.PaymentMethod,
		CouponID:        couponID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order service: checkout customer=%s order=%s total=%s", in.CustomerID, order.Number, order.TotalAmount.String())
	return order, nil
}

// Transition moves an order to newStatus if the state machine permits it.
// Shipping and delivery stamp their timestamps; cancelling an order whose
// stock was never shipped returns the reserved quantities to the variants.
// The repository write is conditional on the status read here, so a
// concurrent transition surfaces as InvalidTransitionError rather than a
// second apply.
func (s *Service) Transition(ctx context.Context, orderNumber string, newStatus domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: newStatus}
	}

	var shippedAt, deliveredAt *time.Time
	switch newStatus {
	case domain.OrderShipped:
		t := s.now()
		shippedAt = &t
	case domain.OrderDelivered:
		t := s.now()
		deliveredAt = &t
	}

	var restock []domain.OrderLine
	if newStatus == domain.OrderCancelled &&
		(order.Status == domain.OrderPending || order.Status == domain.OrderProcessing) {
		restock = order.Lines
	}

	if err := s.orders.Transition(ctx, orderrepo.TransitionInput{
		OrderID:     order.ID,
		From:        order.Status,
		To:          newStatus,
		ShippedAt:   shippedAt,
		DeliveredAt: deliveredAt,
		Restock:     restock,
	}); err != nil {
		return nil, err
	}
	return s.orders.GetByNumber(ctx, orderNumber)
}

func (s *Service) Get(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orders.GetByNumber(ctx, orderNumber)
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

// Quote prices the customer's current cart without creating an order.
func (s *Service) Quote(ctx context.Context, customerID, couponCode, deliveryAreaID string) (pricing.Totals, error) {
	cart, err := s.carts.GetByOwner(ctx, domain.CartOwner{CustomerID: &customerID})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return pricing.Totals{}, ErrCartEmpty
		}
		return pricing.Totals{}, err
	}
	if len(cart.Lines) == 0 {
		return pricing.Totals{}, ErrCartEmpty
	}
	return s.pricer.PriceCart(ctx, *cart, couponCode, deliveryAreaID)
}
