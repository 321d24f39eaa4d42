package service_test

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/testutil"
)

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		t.Fatalf("Transaction body failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// TestSellTargetPrice tests the sell-target derivation.
//
// WHY: The sell target is what the dashboard measures every wallet against.
// It must grow the buy price by the target gain and gross it up for the sale
// commission so the net gain still lands on target.
func TestSellTargetPrice(t *testing.T) {
	tests := []struct {
		name          string
		buyPrice      float64
		gainPercent   float64
		commissionPct float64
		expected      float64
	}{
		{"no commission", 10, 8, 0, 10.8},
		{"with commission", 10, 8, 1, 10.908},
		{"zero gain", 10, 0, 0, 10},
		{"large gain", 100, 50, 0, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.SellTargetPrice(tt.buyPrice, tt.gainPercent, tt.commissionPct)
			if !almostEqual(got, tt.expected, 1e-9) {
				t.Errorf("SellTargetPrice(%v, %v, %v) = %v, want %v",
					tt.buyPrice, tt.gainPercent, tt.commissionPct, got, tt.expected)
			}
		})
	}
}

// TestWalletService_AllocateBuy tests splitting a buy across profit targets.
//
// WHY: Buy allocation is the write path that creates and grows wallets. It
// must key wallets on (asset, target, buy price), create new buckets for
// unseen keys, and fold repeat buys at the same price into existing buckets.
func TestWalletService_AllocateBuy(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one wallet per profit target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt1 := testutil.NewProfitTarget(asset.ID).WithGain(8).WithAllocation(60).Build(t, db)
		pt2 := testutil.NewProfitTarget(asset.ID).WithGain(20).WithAllocation(40).Build(t, db)

		allocations := []service.Allocation{
			{Target: pt1, Percent: 60},
			{Target: pt2, Percent: 40},
		}

		var wallets []model.Wallet
		inTx(t, db, func(tx *sql.Tx) error {
			var err error
			wallets, err = svc.AllocateBuy(ctx, tx, asset,
				testutil.Date(2025, time.March, 3), 10, 1000, model.HoldingTypeSwing, allocations)
			return err
		})

		if len(wallets) != 2 {
			t.Fatalf("Expected 2 wallets, got %d", len(wallets))
		}

		first := wallets[0]
		if !almostEqual(first.TotalInvestment, 600, 1e-9) {
			t.Errorf("First wallet investment = %v, want 600", first.TotalInvestment)
		}
		if !almostEqual(first.TotalShares, 60, 1e-5) {
			t.Errorf("First wallet shares = %v, want 60", first.TotalShares)
		}
		if !almostEqual(first.SellTargetPrice, 10.8, 1e-9) {
			t.Errorf("First wallet sell target = %v, want 10.8", first.SellTargetPrice)
		}

		second := wallets[1]
		if !almostEqual(second.TotalInvestment, 400, 1e-9) {
			t.Errorf("Second wallet investment = %v, want 400", second.TotalInvestment)
		}
		if !almostEqual(second.SellTargetPrice, 12, 1e-9) {
			t.Errorf("Second wallet sell target = %v, want 12", second.SellTargetPrice)
		}
	})

	t.Run("repeat buy at same price grows the existing wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		allocations := []service.Allocation{{Target: pt, Percent: 100}}

		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.AllocateBuy(ctx, tx, asset,
				testutil.Date(2025, time.March, 3), 10, 1000, model.HoldingTypeSwing, allocations)
			return err
		})
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.AllocateBuy(ctx, tx, asset,
				testutil.Date(2025, time.March, 10), 10, 500, model.HoldingTypeSwing, allocations)
			return err
		})

		wallets, err := svc.GetWalletsByAsset(asset.ID, false)
		if err != nil {
			t.Fatalf("GetWalletsByAsset() returned unexpected error: %v", err)
		}
		if len(wallets) != 1 {
			t.Fatalf("Expected 1 wallet after two same-price buys, got %d", len(wallets))
		}

		w := wallets[0]
		if !almostEqual(w.TotalShares, 150, 1e-5) {
			t.Errorf("Total shares = %v, want 150", w.TotalShares)
		}
		if !almostEqual(w.RemainingShares, 150, 1e-5) {
			t.Errorf("Remaining shares = %v, want 150", w.RemainingShares)
		}
		if !almostEqual(w.TotalInvestment, 1500, 1e-9) {
			t.Errorf("Total investment = %v, want 1500", w.TotalInvestment)
		}
	})

	t.Run("buys at different prices keep separate wallets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		allocations := []service.Allocation{{Target: pt, Percent: 100}}

		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.AllocateBuy(ctx, tx, asset,
				testutil.Date(2025, time.March, 3), 10, 1000, model.HoldingTypeSwing, allocations)
			return err
		})
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.AllocateBuy(ctx, tx, asset,
				testutil.Date(2025, time.March, 10), 12, 600, model.HoldingTypeSwing, allocations)
			return err
		})

		wallets, err := svc.GetWalletsByAsset(asset.ID, false)
		if err != nil {
			t.Fatalf("GetWalletsByAsset() returned unexpected error: %v", err)
		}
		if len(wallets) != 2 {
			t.Errorf("Expected 2 wallets for two distinct buy prices, got %d", len(wallets))
		}
	})

	t.Run("rejects empty allocation list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)

		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		_, err = svc.AllocateBuy(ctx, tx, asset,
			testutil.Date(2025, time.March, 3), 10, 1000, model.HoldingTypeSwing, nil)
		if !errors.Is(err, apperrors.ErrAllocationSum) {
			t.Errorf("Expected ErrAllocationSum, got %v", err)
		}
	})
}

// TestWalletService_ReduceOnSell tests sell accounting against a wallet.
//
// WHY: Sells realize profit and must never pull more shares out of a wallet
// than remain in it. The realized amount nets out the sale commission.
func TestWalletService_ReduceOnSell(t *testing.T) {
	ctx := context.Background()

	t.Run("partial sell realizes commission-adjusted profit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().WithCommission(1).Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		wallet := testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			WithInvestment(1000).
			Build(t, db)

		var updated model.Wallet
		var realized float64
		inTx(t, db, func(tx *sql.Tx) error {
			var err error
			updated, realized, err = svc.ReduceOnSell(ctx, tx, asset, wallet.ID, 40, 12)
			return err
		})

		// 40 x (12 - 10) = 80 gross, minus 1% of 480 proceeds = 4.8 fee
		if !almostEqual(realized, 75.2, 1e-9) {
			t.Errorf("Realized = %v, want 75.2", realized)
		}
		if !almostEqual(updated.RemainingShares, 60, 1e-5) {
			t.Errorf("Remaining shares = %v, want 60", updated.RemainingShares)
		}
		if !almostEqual(updated.SharesSold, 40, 1e-5) {
			t.Errorf("Shares sold = %v, want 40", updated.SharesSold)
		}
		if !almostEqual(updated.RealizedPL, 75.2, 1e-9) {
			t.Errorf("Wallet realized P/L = %v, want 75.2", updated.RealizedPL)
		}
	})

	t.Run("selling everything empties the wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		wallet := testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			Build(t, db)

		var updated model.Wallet
		inTx(t, db, func(tx *sql.Tx) error {
			var err error
			updated, _, err = svc.ReduceOnSell(ctx, tx, asset, wallet.ID, 100, 11)
			return err
		})

		if updated.RemainingShares != 0 {
			t.Errorf("Remaining shares = %v, want 0", updated.RemainingShares)
		}

		// An emptied wallet drops out of the active listing but its row survives.
		active, err := svc.GetWalletsByAsset(asset.ID, true)
		if err != nil {
			t.Fatalf("GetWalletsByAsset() returned unexpected error: %v", err)
		}
		if len(active) != 0 {
			t.Errorf("Expected no active wallets, got %d", len(active))
		}

		all, err := svc.GetWalletsByAsset(asset.ID, false)
		if err != nil {
			t.Fatalf("GetWalletsByAsset() returned unexpected error: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("Expected emptied wallet row to persist, got %d rows", len(all))
		}
	})

	t.Run("rejects selling more than remains", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		wallet := testutil.NewWallet(asset.ID, pt.ID).
			WithShares(100, 30).
			Build(t, db)

		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		_, _, err = svc.ReduceOnSell(ctx, tx, asset, wallet.ID, 31, 12)
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
	})

	t.Run("rejects a wallet belonging to another asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		// The sell names asset A but the wallet was bought under asset B.
		assetA := testutil.NewAsset().Build(t, db)
		assetB := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(assetB.ID).Build(t, db)
		wallet := testutil.NewWallet(assetB.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			Build(t, db)

		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		_, _, err = svc.ReduceOnSell(ctx, tx, assetA, wallet.ID, 40, 12)
		if !errors.Is(err, apperrors.ErrWalletAssetMismatch) {
			t.Errorf("Expected ErrWalletAssetMismatch, got %v", err)
		}
	})

	t.Run("tolerates float dust on a full sell", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		wallet := testutil.NewWallet(asset.ID, pt.ID).
			WithShares(33.33333, 33.33333).
			Build(t, db)

		var updated model.Wallet
		inTx(t, db, func(tx *sql.Tx) error {
			var err error
			updated, _, err = svc.ReduceOnSell(ctx, tx, asset, wallet.ID, 33.333335, 12)
			return err
		})

		if updated.RemainingShares != 0 {
			t.Errorf("Remaining shares = %v, want exactly 0 after clamp", updated.RemainingShares)
		}
	})
}

// TestWalletService_ApplySplit tests split adjustment of wallet state.
//
// WHY: A split rewrites share counts and prices for every wallet bought
// before it, without changing invested money. Wallets created after the
// split already reflect post-split prices and must not be touched.
func TestWalletService_ApplySplit(t *testing.T) {
	ctx := context.Background()

	t.Run("adjusts pre-split wallets only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)

		before := testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			WithInvestment(1000).
			WithSellTarget(10.8).
			WithCreatedAt(testutil.Date(2025, time.February, 1)).
			Build(t, db)
		after := testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(6).
			WithShares(50, 50).
			WithInvestment(300).
			WithSellTarget(6.48).
			WithCreatedAt(testutil.Date(2025, time.April, 1)).
			Build(t, db)

		var adjusted int
		inTx(t, db, func(tx *sql.Tx) error {
			var err error
			adjusted, err = svc.ApplySplit(ctx, tx, asset.ID, 2, testutil.Date(2025, time.March, 15))
			return err
		})

		if adjusted != 1 {
			t.Errorf("Expected 1 wallet adjusted, got %d", adjusted)
		}

		got, err := svc.GetWallet(before.ID)
		if err != nil {
			t.Fatalf("GetWallet() returned unexpected error: %v", err)
		}
		if !almostEqual(got.BuyPrice, 5, 1e-9) {
			t.Errorf("Pre-split buy price = %v, want 5", got.BuyPrice)
		}
		if !almostEqual(got.TotalShares, 200, 1e-5) {
			t.Errorf("Pre-split total shares = %v, want 200", got.TotalShares)
		}
		if !almostEqual(got.SellTargetPrice, 5.4, 1e-9) {
			t.Errorf("Pre-split sell target = %v, want 5.4", got.SellTargetPrice)
		}
		if !almostEqual(got.TotalInvestment, 1000, 1e-9) {
			t.Errorf("Pre-split investment = %v, want unchanged 1000", got.TotalInvestment)
		}

		untouched, err := svc.GetWallet(after.ID)
		if err != nil {
			t.Fatalf("GetWallet() returned unexpected error: %v", err)
		}
		if !almostEqual(untouched.BuyPrice, 6, 1e-9) {
			t.Errorf("Post-split wallet buy price = %v, want unchanged 6", untouched.BuyPrice)
		}
		if !almostEqual(untouched.TotalShares, 50, 1e-5) {
			t.Errorf("Post-split wallet shares = %v, want unchanged 50", untouched.TotalShares)
		}
	})

	t.Run("reverse split restores pre-split state", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		wallet := testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 80).
			WithInvestment(1000).
			WithSellTarget(10.8).
			WithCreatedAt(testutil.Date(2025, time.February, 1)).
			Build(t, db)

		splitDate := testutil.Date(2025, time.March, 15)
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.ApplySplit(ctx, tx, asset.ID, 2, splitDate)
			return err
		})
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.ReverseSplit(ctx, tx, asset.ID, 2, splitDate)
			return err
		})

		got, err := svc.GetWallet(wallet.ID)
		if err != nil {
			t.Fatalf("GetWallet() returned unexpected error: %v", err)
		}
		if !almostEqual(got.BuyPrice, 10, 1e-9) {
			t.Errorf("Buy price after reverse = %v, want 10", got.BuyPrice)
		}
		if !almostEqual(got.TotalShares, 100, 1e-5) {
			t.Errorf("Total shares after reverse = %v, want 100", got.TotalShares)
		}
		if !almostEqual(got.RemainingShares, 80, 1e-5) {
			t.Errorf("Remaining shares after reverse = %v, want 80", got.RemainingShares)
		}
		if !almostEqual(got.SellTargetPrice, 10.8, 1e-9) {
			t.Errorf("Sell target after reverse = %v, want 10.8", got.SellTargetPrice)
		}
	})

	t.Run("rejects a backdated split that collides with a later wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		// A 2:1 split dated before the first wallet would move it to $5,
		// the key the second wallet already occupies.
		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			WithCreatedAt(testutil.Date(2025, time.February, 1)).
			Build(t, db)
		testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(5).
			WithShares(40, 40).
			WithCreatedAt(testutil.Date(2025, time.April, 1)).
			Build(t, db)

		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		_, err = svc.ApplySplit(ctx, tx, asset.ID, 2, testutil.Date(2025, time.March, 15))
		if !errors.Is(err, apperrors.ErrSplitWalletCollision) {
			t.Errorf("Expected ErrSplitWalletCollision, got %v", err)
		}
	})

	t.Run("post-split buy at the adjusted price folds into the adjusted wallet", func(t *testing.T) {
		// Buy 100 @ $10 ($1000), 2:1 split, then buy 50 @ $5 ($250).
		// The split leaves $5/200sh/$1000; the second buy keys on the
		// adjusted $5 price and folds into the same wallet: $5/250sh/$1250.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWalletService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).WithGain(8).Build(t, db)
		allocations := []service.Allocation{{Target: pt, Percent: 100}}

		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.AllocateBuy(ctx, tx, asset,
				testutil.Date(2025, time.February, 1), 10, 1000, model.HoldingTypeSwing, allocations)
			return err
		})
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.ApplySplit(ctx, tx, asset.ID, 2, testutil.Date(2025, time.March, 15))
			return err
		})
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := svc.AllocateBuy(ctx, tx, asset,
				testutil.Date(2025, time.April, 1), 5, 250, model.HoldingTypeSwing, allocations)
			return err
		})

		wallets, err := svc.GetWalletsByAsset(asset.ID, false)
		if err != nil {
			t.Fatalf("GetWalletsByAsset() returned unexpected error: %v", err)
		}
		if len(wallets) != 1 {
			t.Fatalf("Expected the post-split buy to merge into the adjusted wallet, got %d wallets", len(wallets))
		}

		w := wallets[0]
		if !almostEqual(w.BuyPrice, 5, 1e-9) {
			t.Errorf("Buy price = %v, want 5", w.BuyPrice)
		}
		if !almostEqual(w.TotalShares, 250, 1e-5) {
			t.Errorf("Total shares = %v, want 250", w.TotalShares)
		}
		if !almostEqual(w.TotalInvestment, 1250, 1e-9) {
			t.Errorf("Total investment = %v, want 1250", w.TotalInvestment)
		}
	})
}
