package cart

import (
	"context"

	"footware-store/internal/domain"
)

type Repository interface {
	// FindOrCreate returns the owner's cart, inserting it atomically on first use.
	FindOrCreate(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetByOwner(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	// AddLine upserts the (cart, variant) line, increasing quantity if the
	// variant is already present. The cumulative quantity is validated against
	// live stock with the variant row locked; on failure nothing is mutated.
	AddLine(ctx context.Context, cartID, variantID string, quantity int) error
	// UpdateLineQuantity sets a line's quantity, removing the line when the new
	// quantity is zero or negative.
	UpdateLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
}
