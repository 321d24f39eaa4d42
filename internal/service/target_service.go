package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
)

// TargetService handles entry-target and profit-target business logic,
// including the allocation-redistribution rule on profit-target deletion.
type TargetService struct {
	db         *sql.DB
	targetRepo *repository.TargetRepository
	walletRepo *repository.WalletRepository
	assetRepo  *repository.AssetRepository
}

// NewTargetService creates a new TargetService with the provided repository dependencies.
func NewTargetService(
	db *sql.DB,
	targetRepo *repository.TargetRepository,
	walletRepo *repository.WalletRepository,
	assetRepo *repository.AssetRepository,
) *TargetService {
	return &TargetService{
		db:         db,
		targetRepo: targetRepo,
		walletRepo: walletRepo,
		assetRepo:  assetRepo,
	}
}

// GetEntryTargets retrieves all entry targets for an asset.
func (s *TargetService) GetEntryTargets(assetID string) ([]model.EntryTarget, error) {
	return s.targetRepo.GetEntryTargets(assetID)
}

// GetProfitTargets retrieves all profit targets for an asset.
func (s *TargetService) GetProfitTargets(assetID string) ([]model.ProfitTarget, error) {
	return s.targetRepo.GetProfitTargets(assetID)
}

// CreateEntryTarget creates a new entry target for an asset.
func (s *TargetService) CreateEntryTarget(ctx context.Context, req request.CreateEntryTargetRequest) (*model.EntryTarget, error) {
	if _, err := s.assetRepo.GetAsset(req.AssetID); err != nil {
		return nil, err
	}

	target := &model.EntryTarget{
		ID:          uuid.New().String(),
		AssetID:     req.AssetID,
		DropPercent: req.DropPercent,
		SortOrder:   req.SortOrder,
	}

	if err := s.targetRepo.InsertEntryTarget(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to create entry target: %w", err)
	}

	return target, nil
}

// UpdateEntryTarget updates an existing entry target.
func (s *TargetService) UpdateEntryTarget(ctx context.Context, id string, req request.UpdateEntryTargetRequest) (*model.EntryTarget, error) {
	target, err := s.targetRepo.GetEntryTarget(id)
	if err != nil {
		return nil, err
	}

	if req.DropPercent != nil {
		target.DropPercent = *req.DropPercent
	}
	if req.SortOrder != nil {
		target.SortOrder = *req.SortOrder
	}

	if err := s.targetRepo.UpdateEntryTarget(ctx, &target); err != nil {
		return nil, fmt.Errorf("failed to update entry target: %w", err)
	}

	return &target, nil
}

// DeleteEntryTarget removes an entry target. Entry targets carry no wallet
// state, so deletion has no redistribution step.
func (s *TargetService) DeleteEntryTarget(ctx context.Context, id string) error {
	if _, err := s.targetRepo.GetEntryTarget(id); err != nil {
		return err
	}
	return s.targetRepo.DeleteEntryTarget(ctx, id)
}

// CreateProfitTarget creates a new profit target for an asset.
func (s *TargetService) CreateProfitTarget(ctx context.Context, req request.CreateProfitTargetRequest) (*model.ProfitTarget, error) {
	if _, err := s.assetRepo.GetAsset(req.AssetID); err != nil {
		return nil, err
	}

	target := &model.ProfitTarget{
		ID:                uuid.New().String(),
		AssetID:           req.AssetID,
		GainPercent:       req.GainPercent,
		AllocationPercent: req.AllocationPercent,
		SortOrder:         req.SortOrder,
	}

	if err := s.targetRepo.InsertProfitTarget(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to create profit target: %w", err)
	}

	return target, nil
}

// UpdateProfitTarget updates an existing profit target.
func (s *TargetService) UpdateProfitTarget(ctx context.Context, id string, req request.UpdateProfitTargetRequest) (*model.ProfitTarget, error) {
	target, err := s.targetRepo.GetProfitTarget(id)
	if err != nil {
		return nil, err
	}

	if req.GainPercent != nil {
		target.GainPercent = *req.GainPercent
	}
	if req.AllocationPercent != nil {
		target.AllocationPercent = *req.AllocationPercent
	}
	if req.SortOrder != nil {
		target.SortOrder = *req.SortOrder
	}

	if err := s.targetRepo.UpdateProfitTarget(ctx, &target); err != nil {
		return nil, fmt.Errorf("failed to update profit target: %w", err)
	}

	return &target, nil
}

// DeleteProfitTarget removes a profit target and redistributes its allocation
// percent proportionally across the asset's surviving targets so they still
// sum to 100.
//
// Deletion is rejected with apperrors.ErrProfitTargetInUse while any wallet
// under the target holds remaining shares: open lots must be sold (or the
// target's wallets split-adjusted to zero) before the bucket can go away.
func (s *TargetService) DeleteProfitTarget(ctx context.Context, id string) error {
	target, err := s.targetRepo.GetProfitTarget(id)
	if err != nil {
		return err
	}

	wallets, err := s.walletRepo.GetWalletsByProfitTarget(id)
	if err != nil {
		return fmt.Errorf("failed to check profit target wallets: %w", err)
	}
	for _, w := range wallets {
		if w.RemainingShares > ShareEpsilon {
			return apperrors.ErrProfitTargetInUse
		}
	}

	siblings, err := s.targetRepo.GetProfitTargets(target.AssetID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	txRepo := s.targetRepo.WithTx(tx)

	if err := txRepo.DeleteProfitTarget(ctx, id); err != nil {
		return err
	}

	// Scale survivors so allocations sum to 100 again. A deleted target at
	// 100% leaves nothing to redistribute to.
	remaining := 100 - target.AllocationPercent
	if remaining > 0 {
		scale := 100 / remaining
		for _, sibling := range siblings {
			if sibling.ID == id {
				continue
			}
			sibling.AllocationPercent *= scale
			if err := txRepo.UpdateProfitTarget(ctx, &sibling); err != nil {
				return fmt.Errorf("failed to redistribute allocation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profit target deletion: %w", err)
	}

	return nil
}
