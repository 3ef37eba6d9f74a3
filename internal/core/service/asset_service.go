package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

type AssetService struct {
	repo   ports.AssetRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewAssetService(repo ports.AssetRepository, logger zerolog.Logger) *AssetService {
	return &AssetService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *AssetService) CreateAsset(ctx context.Context, in ports.CreateAssetInput) (*domain.Asset, error) {
	asset, err := domain.NewAsset(in.Name, domain.AssetType(strings.TrimSpace(in.Type)), in.Quantity, s.now())
	if err != nil {
		return nil, err
	}
	asset.Image = in.Image
	asset.CompanyName = strings.TrimSpace(in.CompanyName)
	asset.HREmail = domain.NormalizeEmail(in.HREmail)

	id, err := s.repo.Create(ctx, asset)
	if err != nil {
		s.logger.Error().Err(err).Str("name", asset.Name).Msg("failed to create asset")
		return nil, err
	}
	asset.ID = id

	s.logger.Info().
		Str("asset_id", id).
		Str("name", asset.Name).
		Int("quantity", asset.Quantity).
		Msg("asset created")
	return asset, nil
}

func (s *AssetService) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AssetService) ListAssets(ctx context.Context, filter ports.AssetListFilter) (*ports.Page[*domain.Asset], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Type != "" && !domain.AssetType(filter.Type).Valid() {
		return nil, fmt.Errorf("%w: unknown asset type %q", domain.ErrValidation, filter.Type)
	}
	assets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return ports.NewPage(assets, total, filter.PageRequest), nil
}

// UpdateAsset applies a partial edit. Quantity set here overwrites the stock
// level directly.
func (s *AssetService) UpdateAsset(ctx context.Context, id string, patch domain.AssetPatch) (bool, bool, error) {
	if patch.Empty() {
		return false, false, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if err := patch.Validate(); err != nil {
		return false, false, err
	}
	matched, modified, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return false, false, fmt.Errorf("update asset: %w", err)
	}
	if !matched {
		return false, false, domain.ErrAssetNotFound
	}
	if modified {
		s.logger.Info().Str("asset_id", id).Msg("asset updated")
	}
	return matched, modified, nil
}

func (s *AssetService) DeleteAsset(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Warn().Str("asset_id", id).Msg("asset deleted")
	}
	return deleted, nil
}
