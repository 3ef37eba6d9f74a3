package service

import (
	"context"
	"fmt"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

const topRequestedLimit = 5

type DashboardService struct {
	assets   ports.AssetRepository
	requests ports.RequestRepository
}

func NewDashboardService(assets ports.AssetRepository, requests ports.RequestRepository) *DashboardService {
	return &DashboardService{assets: assets, requests: requests}
}

// AssetTypeBreakdown counts asset lines per type.
func (s *DashboardService) AssetTypeBreakdown(ctx context.Context) ([]domain.TypeCount, error) {
	counts, err := s.assets.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("count assets by type: %w", err)
	}
	if counts == nil {
		counts = []domain.TypeCount{}
	}
	return counts, nil
}

// TopRequestedAssets returns the most requested asset names, grouped by the
// name captured on each request.
func (s *DashboardService) TopRequestedAssets(ctx context.Context) ([]domain.NameCount, error) {
	counts, err := s.requests.TopRequested(ctx, topRequestedLimit)
	if err != nil {
		return nil, fmt.Errorf("top requested assets: %w", err)
	}
	if counts == nil {
		counts = []domain.NameCount{}
	}
	return counts, nil
}
