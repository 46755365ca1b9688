package cart

import (
	"context"
	"errors"
	"strings"

	"footware-store/internal/domain"
)

type Service struct {
	repo    cartRepo
	catalog catalogRepo
}

type cartRepo interface {
	FindOrCreate(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetByOwner(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID, variantID string, quantity int) error
	UpdateLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
}

type catalogRepo interface {
	GetVariant(ctx context.Context, shoeID, colorID, sizeID string) (*domain.Variant, error)
	GetVariantByID(ctx context.Context, id string) (*domain.Variant, error)
}

func New(repo cartRepo, catalog catalogRepo) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// VariantRef addresses a variant either directly by id or by its
// (shoe, color, size) tuple.
type VariantRef struct {
	VariantID string `json:"variantId,omitempty"`
	ShoeID    string `json:"shoeId,omitempty"`
	ColorID   string `json:"colorId,omitempty"`
	SizeID    string `json:"sizeId,omitempty"`
}

func (ref VariantRef) empty() bool {
	return strings.TrimSpace(ref.VariantID) == "" &&
		(strings.TrimSpace(ref.ShoeID) == "" || strings.TrimSpace(ref.ColorID) == "" || strings.TrimSpace(ref.SizeID) == "")
}

// AddItem locates or creates the owner's cart and upserts the variant's line.
// The cumulative quantity is validated against live stock; on an
// InsufficientStockError no mutation is applied. Returns the updated cart.
func (s *Service) AddItem(ctx context.Context, owner domain.CartOwner, ref VariantRef, quantity int) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, errors.New("cart owner required")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if ref.empty() {
		return nil, errors.New("variant reference required")
	}

	variant, err := s.resolveVariant(ctx, ref)
	if err != nil {
		return nil, err
	}
	if variant.StockQuantity < quantity {
		return nil, &domain.InsufficientStockError{Shortfalls: []domain.StockShortfall{
			{VariantID: variant.ID, Requested: quantity, Available: variant.StockQuantity},
		}}
	}

	cart, err := s.repo.FindOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddLine(ctx, cart.ID, variant.ID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// UpdateItem sets a line's quantity. A quantity of zero or less removes the
// line; the returned flag reports that. Stock is validated for increases.
func (s *Service) UpdateItem(ctx context.Context, cartID, lineID string, quantity int) (removed bool, cart *domain.Cart, err error) {
	if err := s.repo.UpdateLineQuantity(ctx, cartID, lineID, quantity); err != nil {
		return false, nil, err
	}
	cart, err = s.repo.GetByID(ctx, cartID)
	if err != nil {
		return false, nil, err
	}
	return quantity <= 0, cart, nil
}

// RemoveItem deletes a line. A missing line reports domain.ErrNotFound so the
// caller can decide whether "already removed" is acceptable.
func (s *Service) RemoveItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error) {
	if err := s.repo.RemoveLine(ctx, cartID, lineID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cartID)
}

// Get returns the owner's cart with live-priced lines.
func (s *Service) Get(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	return s.repo.GetByOwner(ctx, owner)
}

// Clear deletes all lines; the cart row itself persists.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	return s.repo.Clear(ctx, cartID)
}

func (s *Service) resolveVariant(ctx context.Context, ref VariantRef) (*domain.Variant, error) {
	if id := strings.TrimSpace(ref.VariantID); id != "" {
		return s.catalog.GetVariantByID(ctx, id)
	}
	return s.catalog.GetVariant(ctx, ref.ShoeID, ref.ColorID, ref.SizeID)
}
