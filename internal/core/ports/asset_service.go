package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// CreateAssetInput carries a new stock line.
type CreateAssetInput struct {
	Name        string
	Type        string
	Quantity    int
	Image       string
	CompanyName string
	HREmail     string
}

type AssetService interface {
	CreateAsset(ctx context.Context, in CreateAssetInput) (*domain.Asset, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
	ListAssets(ctx context.Context, filter AssetListFilter) (*Page[*domain.Asset], error)
	UpdateAsset(ctx context.Context, id string, patch domain.AssetPatch) (matched, modified bool, err error)
	DeleteAsset(ctx context.Context, id string) (bool, error)
}
