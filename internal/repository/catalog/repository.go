package catalog

import (
	"context"

	"footware-store/internal/domain"
)

// Repository resolves purchasable variants and their live stock. Stock
// mutations happen inside the order checkout transaction, not here.
type Repository interface {
	GetVariant(ctx context.Context, shoeID, colorID, sizeID string) (*domain.Variant, error)
	GetVariantByID(ctx context.Context, id string) (*domain.Variant, error)
	CurrentStock(ctx context.Context, variantID string) (int, error)
}
