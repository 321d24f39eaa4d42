package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/testutil"
)

// TestTargetService_EntryTargets tests entry-target CRUD.
func TestTargetService_EntryTargets(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and lists entry targets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTargetService(t, db)

		asset := testutil.NewAsset().Build(t, db)

		created, err := svc.CreateEntryTarget(ctx, request.CreateEntryTargetRequest{
			AssetID:     asset.ID,
			DropPercent: 5,
		})
		if err != nil {
			t.Fatalf("CreateEntryTarget() returned unexpected error: %v", err)
		}

		targets, err := svc.GetEntryTargets(asset.ID)
		if err != nil {
			t.Fatalf("GetEntryTargets() returned unexpected error: %v", err)
		}
		if len(targets) != 1 || targets[0].ID != created.ID {
			t.Errorf("Expected the created target in the listing, got %v", targets)
		}
	})

	t.Run("rejects an unknown asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTargetService(t, db)

		_, err := svc.CreateEntryTarget(ctx, request.CreateEntryTargetRequest{
			AssetID:     testutil.MakeID(),
			DropPercent: 5,
		})
		if !errors.Is(err, apperrors.ErrAssetNotFound) {
			t.Errorf("Expected ErrAssetNotFound, got %v", err)
		}
	})

	t.Run("updates and deletes freely", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTargetService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		target := testutil.NewEntryTarget(asset.ID).WithDrop(5).Build(t, db)

		newDrop := 7.5
		updated, err := svc.UpdateEntryTarget(ctx, target.ID, request.UpdateEntryTargetRequest{
			DropPercent: &newDrop,
		})
		if err != nil {
			t.Fatalf("UpdateEntryTarget() returned unexpected error: %v", err)
		}
		if updated.DropPercent != 7.5 {
			t.Errorf("Drop percent = %v, want 7.5", updated.DropPercent)
		}

		if err := svc.DeleteEntryTarget(ctx, target.ID); err != nil {
			t.Fatalf("DeleteEntryTarget() returned unexpected error: %v", err)
		}

		targets, err := svc.GetEntryTargets(asset.ID)
		if err != nil {
			t.Fatalf("GetEntryTargets() returned unexpected error: %v", err)
		}
		if len(targets) != 0 {
			t.Errorf("Expected no targets after delete, got %d", len(targets))
		}
	})
}

// TestTargetService_DeleteProfitTarget tests deletion with redistribution.
//
// WHY: Profit targets anchor wallet buckets, so one with open shares cannot
// go away. When one does go, the survivors' allocation percents must be
// rescaled to sum to 100 again or future buys would under-allocate.
func TestTargetService_DeleteProfitTarget(t *testing.T) {
	ctx := context.Background()

	t.Run("redistributes allocation across survivors", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTargetService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		doomed := testutil.NewProfitTarget(asset.ID).WithGain(8).WithAllocation(50).Build(t, db)
		testutil.NewProfitTarget(asset.ID).WithGain(20).WithAllocation(30).Build(t, db)
		testutil.NewProfitTarget(asset.ID).WithGain(50).WithAllocation(20).Build(t, db)

		if err := svc.DeleteProfitTarget(ctx, doomed.ID); err != nil {
			t.Fatalf("DeleteProfitTarget() returned unexpected error: %v", err)
		}

		survivors, err := svc.GetProfitTargets(asset.ID)
		if err != nil {
			t.Fatalf("GetProfitTargets() returned unexpected error: %v", err)
		}
		if len(survivors) != 2 {
			t.Fatalf("Expected 2 surviving targets, got %d", len(survivors))
		}

		var sum float64
		for _, s := range survivors {
			sum += s.AllocationPercent
		}
		if !almostEqual(sum, 100, 0.001) {
			t.Errorf("Surviving allocations sum to %v, want 100", sum)
		}

		// 30 and 20 scaled by 100/50.
		for _, s := range survivors {
			if s.GainPercent == 20 && !almostEqual(s.AllocationPercent, 60, 1e-9) {
				t.Errorf("Survivor at 20%% gain has allocation %v, want 60", s.AllocationPercent)
			}
			if s.GainPercent == 50 && !almostEqual(s.AllocationPercent, 40, 1e-9) {
				t.Errorf("Survivor at 50%% gain has allocation %v, want 40", s.AllocationPercent)
			}
		}
	})

	t.Run("rejects deleting a target with open wallets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTargetService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		target := testutil.NewProfitTarget(asset.ID).Build(t, db)
		testutil.NewWallet(asset.ID, target.ID).WithShares(100, 10).Build(t, db)

		err := svc.DeleteProfitTarget(ctx, target.ID)
		if !errors.Is(err, apperrors.ErrProfitTargetInUse) {
			t.Errorf("Expected ErrProfitTargetInUse, got %v", err)
		}
	})

	t.Run("allows deleting a target whose wallets are emptied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTargetService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		target := testutil.NewProfitTarget(asset.ID).WithAllocation(40).Build(t, db)
		testutil.NewProfitTarget(asset.ID).WithGain(20).WithAllocation(60).Build(t, db)
		testutil.NewWallet(asset.ID, target.ID).WithShares(100, 0).Build(t, db)

		if err := svc.DeleteProfitTarget(ctx, target.ID); err != nil {
			t.Errorf("DeleteProfitTarget() returned unexpected error: %v", err)
		}
	})
}
