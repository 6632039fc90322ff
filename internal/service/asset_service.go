package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// AssetService is thin CRUD over facility assets. Admin-only, enforced at
// the route layer.
type AssetService struct {
	assets repository.AssetRepository
}

// AssetInput describes create/update payloads.
type AssetInput struct {
	Name         string
	Category     string
	Location     string
	SerialNumber string
	Status       domain.AssetStatus
}

// NewAssetService constructs the service.
func NewAssetService(assets repository.AssetRepository) *AssetService {
	return &AssetService{assets: assets}
}

// Create registers a new asset.
func (s *AssetService) Create(ctx context.Context, input AssetInput) (*domain.FacilityAsset, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	status := input.Status
	if status == "" {
		status = domain.AssetStatusOperational
	}
	asset := &domain.FacilityAsset{
		Name:         name,
		Category:     strings.TrimSpace(input.Category),
		Location:     strings.TrimSpace(input.Location),
		SerialNumber: strings.TrimSpace(input.SerialNumber),
		Status:       status,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// Update replaces asset attributes.
func (s *AssetService) Update(ctx context.Context, id string, input AssetInput) (*domain.FacilityAsset, error) {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		asset.Name = name
	}
	asset.Category = strings.TrimSpace(input.Category)
	asset.Location = strings.TrimSpace(input.Location)
	asset.SerialNumber = strings.TrimSpace(input.SerialNumber)
	if input.Status != "" {
		asset.Status = input.Status
	}
	if err := s.assets.Update(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// Delete removes an asset.
func (s *AssetService) Delete(ctx context.Context, id string) error {
	if err := s.assets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Get fetches a single asset.
func (s *AssetService) Get(ctx context.Context, id string) (*domain.FacilityAsset, error) {
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// List returns assets page by page.
func (s *AssetService) List(ctx context.Context, limit, offset int) ([]domain.FacilityAsset, error) {
	assets, err := s.assets.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assets, nil
}
