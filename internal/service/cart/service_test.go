package cart

import (
	"context"
	"errors"
	"testing"

	"footware-store/internal/domain"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	cart          *domain.Cart
	findOrCreated bool
	addLineErr    error
	lastAddCartID string
	lastAddVarID  string
	lastAddQty    int
	updateErr     error
	lastUpdateQty int
	removeErr     error
	lastRemoveID  string
	clearCalled   bool
}

func (s *stubRepo) FindOrCreate(_ context.Context, _ domain.CartOwner) (*domain.Cart, error) {
	s.findOrCreated = true
	return s.cart, nil
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, nil
}

func (s *stubRepo) GetByOwner(_ context.Context, _ domain.CartOwner) (*domain.Cart, error) {
	if s.cart == nil {
		return nil, domain.ErrNotFound
	}
	return s.cart, nil
}

func (s *stubRepo) AddLine(_ context.Context, cartID, variantID string, quantity int) error {
	if s.addLineErr != nil {
		return s.addLineErr
	}
	s.lastAddCartID = cartID
	s.lastAddVarID = variantID
	s.lastAddQty = quantity
	return nil
}

func (s *stubRepo) UpdateLineQuantity(_ context.Context, _, _ string, quantity int) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.lastUpdateQty = quantity
	return nil
}

func (s *stubRepo) RemoveLine(_ context.Context, _, lineID string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.lastRemoveID = lineID
	return nil
}

func (s *stubRepo) Clear(_ context.Context, _ string) error {
	s.clearCalled = true
	return nil
}

type stubCatalog struct {
	variant    *domain.Variant
	byIDCalls  int
	byKeyCalls int
}

func (s *stubCatalog) GetVariant(_ context.Context, _, _, _ string) (*domain.Variant, error) {
	s.byKeyCalls++
	if s.variant == nil {
		return nil, domain.ErrNotFound
	}
	return s.variant, nil
}

func (s *stubCatalog) GetVariantByID(_ context.Context, _ string) (*domain.Variant, error) {
	s.byIDCalls++
	if s.variant == nil {
		return nil, domain.ErrNotFound
	}
	return s.variant, nil
}

func customerOwner(id string) domain.CartOwner {
	return domain.CartOwner{CustomerID: &id}
}

func testVariant(stock int) *domain.Variant {
	return &domain.Variant{
		ID:              "variant-1",
		ShoeID:          "shoe-1",
		ColorID:         "color-1",
		SizeID:          "size-1",
		SKU:             "UR-BLK-42",
		StockQuantity:   stock,
		BasePrice:       decimal.NewFromInt(4500),
		PriceAdjustment: decimal.NewFromInt(200),
		Active:          true,
	}
}

func TestAddItemResolvesByTuple(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{ID: "cart-1"}}
	catalog := &stubCatalog{variant: testVariant(10)}
	svc := New(repo, catalog)

	_, err := svc.AddItem(context.Background(), customerOwner("cust-1"), VariantRef{
		ShoeID: "shoe-1", ColorID: "color-1", SizeID: "size-1",
	}, 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if catalog.byKeyCalls != 1 || catalog.byIDCalls != 0 {
		t.Fatalf("expected tuple lookup, got byKey=%d byID=%d", catalog.byKeyCalls, catalog.byIDCalls)
	}
	if repo.lastAddVarID != "variant-1" || repo.lastAddQty != 2 {
		t.Fatalf("unexpected AddLine args: variant=%s qty=%d", repo.lastAddVarID, repo.lastAddQty)
	}
}

func TestAddItemPrefersVariantID(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{ID: "cart-1"}}
	catalog := &stubCatalog{variant: testVariant(10)}
	svc := New(repo, catalog)

	_, err := svc.AddItem(context.Background(), customerOwner("cust-1"), VariantRef{VariantID: "variant-1"}, 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if catalog.byIDCalls != 1 || catalog.byKeyCalls != 0 {
		t.Fatalf("expected id lookup, got byKey=%d byID=%d", catalog.byKeyCalls, catalog.byIDCalls)
	}
}

func TestAddItemInsufficientStockLeavesCartUntouched(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{ID: "cart-1"}}
	catalog := &stubCatalog{variant: testVariant(1)}
	svc := New(repo, catalog)

	_, err := svc.AddItem(context.Background(), customerOwner("cust-1"), VariantRef{VariantID: "variant-1"}, 5)

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if len(stockErr.Shortfalls) != 1 {
		t.Fatalf("expected one shortfall, got %d", len(stockErr.Shortfalls))
	}
	sf := stockErr.Shortfalls[0]
	if sf.Requested != 5 || sf.Available != 1 {
		t.Fatalf("unexpected shortfall: %+v", sf)
	}
	if repo.findOrCreated || repo.lastAddQty != 0 {
		t.Fatal("cart mutated despite stock failure")
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	svc := New(&stubRepo{}, &stubCatalog{})

	if _, err := svc.AddItem(context.Background(), domain.CartOwner{}, VariantRef{VariantID: "v"}, 1); err == nil {
		t.Fatal("expected error for missing owner")
	}
	if _, err := svc.AddItem(context.Background(), customerOwner("c"), VariantRef{VariantID: "v"}, 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
	if _, err := svc.AddItem(context.Background(), customerOwner("c"), VariantRef{ShoeID: "s"}, 1); err == nil {
		t.Fatal("expected error for incomplete variant reference")
	}
}

func TestUpdateItemZeroQuantityRemoves(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{ID: "cart-1"}}
	svc := New(repo, &stubCatalog{})

	removed, _, err := svc.UpdateItem(context.Background(), "cart-1", "line-1", 0)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !removed {
		t.Fatal("expected removed=true for zero quantity")
	}

	removed, _, err = svc.UpdateItem(context.Background(), "cart-1", "line-1", 3)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if removed {
		t.Fatal("expected removed=false for positive quantity")
	}
	if repo.lastUpdateQty != 3 {
		t.Fatalf("expected quantity 3 passed through, got %d", repo.lastUpdateQty)
	}
}

func TestRemoveItemMissingLine(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{ID: "cart-1"}, removeErr: domain.ErrNotFound}
	svc := New(repo, &stubCatalog{})

	_, err := svc.RemoveItem(context.Background(), "cart-1", "line-unknown")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
