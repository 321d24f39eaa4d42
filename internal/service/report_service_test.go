package service_test

import (
	"testing"
	"time"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/testutil"
)

// TestPercentToPrice tests the signed distance metric.
func TestPercentToPrice(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		reference float64
		expected  float64
	}{
		{"at reference", 10.8, 10.8, 0},
		{"below reference", 10.26, 10.8, -5},
		{"above reference", 11.88, 10.8, 10},
		{"zero reference", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.PercentToPrice(tt.current, tt.reference)
			if !almostEqual(got, tt.expected, 1e-9) {
				t.Errorf("PercentToPrice(%v, %v) = %v, want %v",
					tt.current, tt.reference, got, tt.expected)
			}
		})
	}
}

// TestClassifyTargetStatus tests the three display tiers.
//
// WHY: The tier boundaries carry a small tolerance so float dust on an
// exactly-hit target still reads as hit. The boundaries themselves must be
// stable or the dashboard coloring flickers.
func TestClassifyTargetStatus(t *testing.T) {
	tests := []struct {
		name     string
		percent  float64
		expected string
	}{
		{"above target", 2.5, model.TargetStatusHit},
		{"exactly at target", 0, model.TargetStatusHit},
		{"within tolerance below", -0.005, model.TargetStatusHit},
		{"just outside tolerance", -0.006, model.TargetStatusNear},
		{"near boundary", -1, model.TargetStatusNear},
		{"past near boundary", -1.001, model.TargetStatusFar},
		{"deep below", -25, model.TargetStatusFar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.ClassifyTargetStatus(tt.percent)
			if got != tt.expected {
				t.Errorf("ClassifyTargetStatus(%v) = %q, want %q", tt.percent, got, tt.expected)
			}
		})
	}
}

// TestRatioOrNil tests the division-by-zero rule for percentage metrics.
//
// WHY: A position with no cost and no profit is a flat 0%, but profit with
// no cost basis has no meaningful percentage and must surface as undefined
// rather than infinity.
func TestRatioOrNil(t *testing.T) {
	t.Run("normal division", func(t *testing.T) {
		got := service.RatioOrNil(50, 1000)
		if got == nil {
			t.Fatal("Expected a value, got nil")
		}
		if !almostEqual(*got, 5, 1e-9) {
			t.Errorf("RatioOrNil(50, 1000) = %v, want 5", *got)
		}
	})

	t.Run("zero over zero is zero", func(t *testing.T) {
		got := service.RatioOrNil(0, 0)
		if got == nil {
			t.Fatal("Expected 0, got nil")
		}
		if *got != 0 {
			t.Errorf("RatioOrNil(0, 0) = %v, want 0", *got)
		}
	})

	t.Run("nonzero over zero is undefined", func(t *testing.T) {
		if got := service.RatioOrNil(50, 0); got != nil {
			t.Errorf("RatioOrNil(50, 0) = %v, want nil", *got)
		}
	})
}

// TestFiveDayDip tests the dip metric over a five-close window.
//
// WHY: The dip metric flags buy opportunities. It must pick the deepest
// qualifying drop, ignore drops shallower than the entry threshold, and stay
// silent with no threshold or no qualifying close.
func TestFiveDayDip(t *testing.T) {
	closes := func(prices ...float64) []model.AssetPrice {
		out := make([]model.AssetPrice, len(prices))
		for i, p := range prices {
			out[i] = model.AssetPrice{Price: p}
		}
		return out
	}

	t.Run("returns the deepest qualifying drop", func(t *testing.T) {
		// Against 100: -10%; against 95: ~-5.26%; both qualify at 5%.
		got := service.FiveDayDip(90, closes(100, 95, 91), 5)
		if got == nil {
			t.Fatal("Expected a dip, got nil")
		}
		if !almostEqual(*got, -10, 1e-9) {
			t.Errorf("FiveDayDip = %v, want -10", *got)
		}
	})

	t.Run("ignores drops shallower than the threshold", func(t *testing.T) {
		if got := service.FiveDayDip(98, closes(100, 99, 98), 5); got != nil {
			t.Errorf("Expected nil for shallow drops, got %v", *got)
		}
	})

	t.Run("drop exactly at the threshold qualifies", func(t *testing.T) {
		got := service.FiveDayDip(95, closes(100), 5)
		if got == nil {
			t.Fatal("Expected a dip at exactly -5%, got nil")
		}
		if !almostEqual(*got, -5, 1e-9) {
			t.Errorf("FiveDayDip = %v, want -5", *got)
		}
	})

	t.Run("no threshold means no dip", func(t *testing.T) {
		if got := service.FiveDayDip(50, closes(100), 0); got != nil {
			t.Errorf("Expected nil with no threshold, got %v", *got)
		}
	})

	t.Run("only the first five closes are scanned", func(t *testing.T) {
		// The deep 50 close sits outside the window.
		got := service.FiveDayDip(96, closes(100, 100, 100, 100, 100, 50), 2)
		if got == nil {
			t.Fatal("Expected a dip, got nil")
		}
		if !almostEqual(*got, -4, 1e-9) {
			t.Errorf("FiveDayDip = %v, want -4 against the in-window closes", *got)
		}
	})

	t.Run("skips zero closes", func(t *testing.T) {
		got := service.FiveDayDip(90, closes(0, 100), 5)
		if got == nil {
			t.Fatal("Expected a dip, got nil")
		}
		if !almostEqual(*got, -10, 1e-9) {
			t.Errorf("FiveDayDip = %v, want -10", *got)
		}
	})
}

// TestReportService_AssetDashboard tests the assembled per-asset view.
func TestReportService_AssetDashboard(t *testing.T) {
	t.Run("derives wallet rows and P/L from open wallets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)

		asset := testutil.NewAsset().WithTestPrice(11).Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			WithInvestment(1000).
			WithSellTarget(10.8).
			Build(t, db)

		dashboard, err := svc.AssetDashboard(asset.ID)
		if err != nil {
			t.Fatalf("AssetDashboard() returned unexpected error: %v", err)
		}

		if dashboard.CurrentPrice != 11 {
			t.Errorf("Current price = %v, want test price 11", dashboard.CurrentPrice)
		}
		if len(dashboard.Wallets) != 1 {
			t.Fatalf("Expected 1 wallet row, got %d", len(dashboard.Wallets))
		}

		row := dashboard.Wallets[0]
		// 11 against a 10.8 target is above it: hit.
		if row.TargetStatus != model.TargetStatusHit {
			t.Errorf("Target status = %q, want %q", row.TargetStatus, model.TargetStatusHit)
		}
		if !almostEqual(row.PercentToBE, 10, 1e-9) {
			t.Errorf("Percent to break-even = %v, want 10", row.PercentToBE)
		}
		if !almostEqual(dashboard.UnrealizedPL.Swing, 100, 1e-9) {
			t.Errorf("Unrealized swing P/L = %v, want 100", dashboard.UnrealizedPL.Swing)
		}
		if !almostEqual(dashboard.CostBasis, 1000, 1e-9) {
			t.Errorf("Cost basis = %v, want 1000", dashboard.CostBasis)
		}
	})

	t.Run("splits P/L between swing and hold", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)

		asset := testutil.NewAsset().WithTestPrice(12).Build(t, db)
		pt1 := testutil.NewProfitTarget(asset.ID).WithGain(8).Build(t, db)
		pt2 := testutil.NewProfitTarget(asset.ID).WithGain(20).Build(t, db)

		testutil.NewWallet(asset.ID, pt1.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			WithHoldingType(model.HoldingTypeSwing).
			Build(t, db)
		testutil.NewWallet(asset.ID, pt2.ID).
			WithBuyPrice(10).
			WithShares(50, 50).
			WithHoldingType(model.HoldingTypeHold).
			WithRealizedPL(30).
			Build(t, db)

		dashboard, err := svc.AssetDashboard(asset.ID)
		if err != nil {
			t.Fatalf("AssetDashboard() returned unexpected error: %v", err)
		}

		if !almostEqual(dashboard.UnrealizedPL.Swing, 200, 1e-9) {
			t.Errorf("Unrealized swing = %v, want 200", dashboard.UnrealizedPL.Swing)
		}
		if !almostEqual(dashboard.UnrealizedPL.Hold, 100, 1e-9) {
			t.Errorf("Unrealized hold = %v, want 100", dashboard.UnrealizedPL.Hold)
		}
		if !almostEqual(dashboard.RealizedPL.Hold, 30, 1e-9) {
			t.Errorf("Realized hold = %v, want 30", dashboard.RealizedPL.Hold)
		}
		if !almostEqual(dashboard.TotalPL.Combined, 330, 1e-9) {
			t.Errorf("Total P/L = %v, want 330", dashboard.TotalPL.Combined)
		}
	})

	t.Run("budget availability frees sold proration and adds dividends", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)

		asset := testutil.NewAsset().WithTestPrice(10).WithBudget(2000).Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)

		// Half the lot sold: only $500 of the $1000 stays tied up.
		testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 50).
			WithInvestment(1000).
			Build(t, db)
		testutil.NewTransaction(asset.ID).
			WithAction(model.ActionDividend).
			WithAmount(25).
			Build(t, db)

		dashboard, err := svc.AssetDashboard(asset.ID)
		if err != nil {
			t.Fatalf("AssetDashboard() returned unexpected error: %v", err)
		}

		// 2000 - 500 tied up + 25 dividends
		if !almostEqual(dashboard.BudgetAvailable, 1525, 1e-9) {
			t.Errorf("Budget available = %v, want 1525", dashboard.BudgetAvailable)
		}
		if dashboard.OverBudget {
			t.Error("Expected not over budget")
		}
	})

	t.Run("flags over budget when tied-up funds exceed the budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)

		asset := testutil.NewAsset().WithTestPrice(10).WithBudget(500).Build(t, db)
		pt := testutil.NewProfitTarget(asset.ID).Build(t, db)
		testutil.NewWallet(asset.ID, pt.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			WithInvestment(1000).
			Build(t, db)

		dashboard, err := svc.AssetDashboard(asset.ID)
		if err != nil {
			t.Fatalf("AssetDashboard() returned unexpected error: %v", err)
		}

		if !dashboard.OverBudget {
			t.Error("Expected over budget")
		}
		if !almostEqual(dashboard.BudgetAvailable, -500, 1e-9) {
			t.Errorf("Budget available = %v, want -500", dashboard.BudgetAvailable)
		}
	})

	t.Run("marks a buy opportunity on a qualifying five-day dip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)

		asset := testutil.NewAsset().WithTestPrice(90).Build(t, db)
		testutil.NewEntryTarget(asset.ID).WithDrop(5).Build(t, db)
		testutil.CreatePriceSeries(t, db, asset.ID,
			testutil.Date(2025, time.June, 10), []float64{100, 99, 98, 97, 96})

		dashboard, err := svc.AssetDashboard(asset.ID)
		if err != nil {
			t.Fatalf("AssetDashboard() returned unexpected error: %v", err)
		}

		if dashboard.FiveDayDip == nil {
			t.Fatal("Expected a five-day dip, got nil")
		}
		if !almostEqual(*dashboard.FiveDayDip, -10, 1e-9) {
			t.Errorf("Five-day dip = %v, want -10", *dashboard.FiveDayDip)
		}
		if !dashboard.BuyOpportunity {
			t.Error("Expected a buy opportunity flag")
		}
	})

	t.Run("asset with no data reports flat zeros", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)

		asset := testutil.NewAsset().Build(t, db)

		dashboard, err := svc.AssetDashboard(asset.ID)
		if err != nil {
			t.Fatalf("AssetDashboard() returned unexpected error: %v", err)
		}

		if dashboard.CurrentPrice != 0 {
			t.Errorf("Current price = %v, want 0 with no stored prices", dashboard.CurrentPrice)
		}
		if dashboard.ROI == nil || *dashboard.ROI != 0 {
			t.Errorf("ROI = %v, want 0 for no cost and no profit", dashboard.ROI)
		}
		if len(dashboard.Wallets) != 0 {
			t.Errorf("Expected no wallet rows, got %d", len(dashboard.Wallets))
		}
	})
}

// TestReportService_PortfolioOverview tests portfolio-wide aggregation.
func TestReportService_PortfolioOverview(t *testing.T) {
	t.Run("aggregates across active assets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)

		a1 := testutil.NewAsset().WithTestPrice(11).Build(t, db)
		pt1 := testutil.NewProfitTarget(a1.ID).Build(t, db)
		testutil.NewWallet(a1.ID, pt1.ID).
			WithBuyPrice(10).
			WithShares(100, 100).
			WithInvestment(1000).
			Build(t, db)

		a2 := testutil.NewAsset().WithTestPrice(20).Build(t, db)
		pt2 := testutil.NewProfitTarget(a2.ID).Build(t, db)
		testutil.NewWallet(a2.ID, pt2.ID).
			WithBuyPrice(25).
			WithShares(10, 10).
			WithInvestment(250).
			Build(t, db)

		overview, err := svc.PortfolioOverview(model.AssetFilter{})
		if err != nil {
			t.Fatalf("PortfolioOverview() returned unexpected error: %v", err)
		}

		if len(overview.Assets) != 2 {
			t.Fatalf("Expected 2 assets, got %d", len(overview.Assets))
		}
		// +100 on the first, -50 on the second.
		if !almostEqual(overview.TotalPL.Combined, 50, 1e-9) {
			t.Errorf("Total P/L = %v, want 50", overview.TotalPL.Combined)
		}
		if !almostEqual(overview.TotalCostBasis, 1250, 1e-9) {
			t.Errorf("Total cost basis = %v, want 1250", overview.TotalCostBasis)
		}
		if overview.ROI == nil {
			t.Fatal("Expected an ROI value")
		}
		if !almostEqual(*overview.ROI, 4, 1e-9) {
			t.Errorf("ROI = %v, want 4", *overview.ROI)
		}
	})

	t.Run("excludes hidden assets by default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db)

		testutil.NewAsset().Build(t, db)
		testutil.NewAsset().WithStatus(model.AssetStatusHidden).Build(t, db)

		overview, err := svc.PortfolioOverview(model.AssetFilter{})
		if err != nil {
			t.Fatalf("PortfolioOverview() returned unexpected error: %v", err)
		}
		if len(overview.Assets) != 1 {
			t.Errorf("Expected 1 visible asset, got %d", len(overview.Assets))
		}

		withHidden, err := svc.PortfolioOverview(model.AssetFilter{IncludeHidden: true})
		if err != nil {
			t.Fatalf("PortfolioOverview() returned unexpected error: %v", err)
		}
		if len(withHidden.Assets) != 2 {
			t.Errorf("Expected 2 assets with hidden included, got %d", len(withHidden.Assets))
		}
	})
}
