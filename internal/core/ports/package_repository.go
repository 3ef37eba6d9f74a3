package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// PackageRepository reads the package catalogue.
type PackageRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Package, error)
	List(ctx context.Context) ([]*domain.Package, error)
}
