package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
)

// AssetService handles asset-related business logic operations.
type AssetService struct {
	assetRepo *repository.AssetRepository
}

// NewAssetService creates a new AssetService with the provided repository dependencies.
func NewAssetService(assetRepo *repository.AssetRepository) *AssetService {
	return &AssetService{assetRepo: assetRepo}
}

// GetAssets retrieves assets matching the filter.
func (s *AssetService) GetAssets(filter model.AssetFilter) ([]model.Asset, error) {
	return s.assetRepo.GetAssets(filter)
}

// GetAsset retrieves a single asset by ID.
func (s *AssetService) GetAsset(assetID string) (model.Asset, error) {
	return s.assetRepo.GetAsset(assetID)
}

// CreateAsset creates a new asset with the provided details. New assets start
// in active status.
func (s *AssetService) CreateAsset(ctx context.Context, req request.CreateAssetRequest) (*model.Asset, error) {
	asset := &model.Asset{
		ID:            uuid.New().String(),
		Symbol:        req.Symbol,
		Name:          req.Name,
		AssetType:     req.AssetType,
		Status:        model.AssetStatusActive,
		TestPrice:     req.TestPrice,
		CommissionPct: req.CommissionPct,
		AnnualBudget:  req.AnnualBudget,
	}

	if err := s.assetRepo.InsertAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return asset, nil
}

// UpdateAsset updates an existing asset with the provided fields.
// Only provided fields in the request are updated; omitted fields remain unchanged.
func (s *AssetService) UpdateAsset(ctx context.Context, id string, req request.UpdateAssetRequest) (*model.Asset, error) {
	asset, err := s.assetRepo.GetAsset(id)
	if err != nil {
		return nil, err
	}

	if req.Symbol != nil {
		asset.Symbol = *req.Symbol
	}
	if req.Name != nil {
		asset.Name = *req.Name
	}
	if req.AssetType != nil {
		asset.AssetType = *req.AssetType
	}
	if req.Status != nil {
		asset.Status = *req.Status
	}
	if req.TestPrice != nil {
		asset.TestPrice = *req.TestPrice
	}
	if req.CommissionPct != nil {
		asset.CommissionPct = *req.CommissionPct
	}
	if req.AnnualBudget != nil {
		asset.AnnualBudget = *req.AnnualBudget
	}

	if err := s.assetRepo.UpdateAsset(ctx, &asset); err != nil {
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}

	return &asset, nil
}

// DeleteAsset removes an asset. Assets with transaction history cannot be
// deleted; archive them instead so history stays reportable.
func (s *AssetService) DeleteAsset(ctx context.Context, id string) error {
	if _, err := s.assetRepo.GetAsset(id); err != nil {
		return err
	}

	count, err := s.assetRepo.CountTransactions(id)
	if err != nil {
		return fmt.Errorf("failed to check asset usage: %w", err)
	}
	if count > 0 {
		return apperrors.ErrAssetInUse
	}

	return s.assetRepo.DeleteAsset(ctx, id)
}
