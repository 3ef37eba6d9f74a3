package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

type DashboardService interface {
	AssetTypeBreakdown(ctx context.Context) ([]domain.TypeCount, error)
	TopRequestedAssets(ctx context.Context) ([]domain.NameCount, error)
}
