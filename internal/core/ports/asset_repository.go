package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// AssetListFilter narrows an asset listing.
type AssetListFilter struct {
	Search string
	Type   string
	PageRequest
}

// AssetRepository defines persistence operations for assets.
type AssetRepository interface {
	Create(ctx context.Context, a *domain.Asset) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, filter AssetListFilter) ([]*domain.Asset, int64, error)
	// Update applies a validated patch; matched is false when the asset is absent.
	Update(ctx context.Context, id string, patch domain.AssetPatch) (matched, modified bool, err error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByType(ctx context.Context) ([]domain.TypeCount, error)
}

// InventoryLedger adjusts available stock atomically.
//
// A negative delta only commits when the current quantity covers it;
// otherwise domain.ErrInsufficientStock is returned and nothing changes.
// Positive deltas are unconditional.
type InventoryLedger interface {
	Adjust(ctx context.Context, assetID string, delta int) error
}
