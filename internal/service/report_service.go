package service

import (
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// FiveDayWindow is how many recent closes the dip metric scans.
const FiveDayWindow = 5

// ReportService derives the read-only dashboard metrics from the wallet and
// transaction ledgers plus stored prices. It never writes.
type ReportService struct {
	assetRepo       *repository.AssetRepository
	walletRepo      *repository.WalletRepository
	targetRepo      *repository.TargetRepository
	transactionRepo *repository.TransactionRepository
	priceRepo       *repository.PriceRepository
}

// NewReportService creates a new ReportService with the provided repository dependencies.
func NewReportService(
	assetRepo *repository.AssetRepository,
	walletRepo *repository.WalletRepository,
	targetRepo *repository.TargetRepository,
	transactionRepo *repository.TransactionRepository,
	priceRepo *repository.PriceRepository,
) *ReportService {
	return &ReportService{
		assetRepo:       assetRepo,
		walletRepo:      walletRepo,
		targetRepo:      targetRepo,
		transactionRepo: transactionRepo,
		priceRepo:       priceRepo,
	}
}

// PercentToPrice is the distance from the current price to a reference price,
// as a percentage of the reference. Negative while the price is below it.
func PercentToPrice(currentPrice, referencePrice float64) float64 {
	if referencePrice == 0 {
		return 0
	}
	return (currentPrice/referencePrice - 1) * 100
}

// ClassifyTargetStatus maps a percent-to-target value onto the three display
// tiers: at or within 0.005% of the target counts as hit, within 1% below as
// near, anything further as far.
func ClassifyTargetStatus(percentToTarget float64) string {
	switch {
	case percentToTarget >= -0.005:
		return model.TargetStatusHit
	case percentToTarget >= -1:
		return model.TargetStatusNear
	default:
		return model.TargetStatusFar
	}
}

// RatioOrNil implements the fixed division-by-zero rule for percentage
// metrics: zero denominator with zero numerator is 0%, zero denominator with
// nonzero numerator is undefined (nil).
func RatioOrNil(numerator, denominator float64) *float64 {
	if denominator == 0 {
		if numerator == 0 {
			zero := 0.0
			return &zero
		}
		return nil
	}
	v := round(numerator / denominator * 100)
	return &v
}

// FiveDayDip finds the most negative drop of currentPrice against the last
// five closes that exceeds the asset's entry-target drop threshold. Returns
// nil when no drop qualifies. dropThreshold is the (positive) entry-target
// percent; a close qualifies when the drop is at or below its negation.
func FiveDayDip(currentPrice float64, closes []model.AssetPrice, dropThreshold float64) *float64 {
	if dropThreshold <= 0 {
		return nil
	}

	window := closes
	if len(window) > FiveDayWindow {
		window = window[:FiveDayWindow]
	}

	var best *float64
	for _, c := range window {
		if c.Price == 0 {
			continue
		}
		diff := PercentToPrice(currentPrice, c.Price)
		if diff <= -dropThreshold && (best == nil || diff < *best) {
			v := diff
			best = &v
		}
	}

	return best
}

// CurrentPrice resolves an asset's display price: the test-price override
// when set, otherwise the latest stored close. Returns 0 with no error when
// no price is known yet.
func (s *ReportService) CurrentPrice(asset model.Asset) (float64, bool, error) {
	if asset.TestPrice > 0 {
		return asset.TestPrice, true, nil
	}

	latest, err := s.priceRepo.GetLatestPrice(asset.ID)
	if err == apperrors.ErrPriceNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return latest.Price, false, nil
}

// AssetDashboard derives the full per-asset view: wallet-level percent to
// target and break-even, the best percent to target across open wallets, the
// five-day dip, P/L split by swing vs hold, ROI, and budget availability.
func (s *ReportService) AssetDashboard(assetID string) (*model.AssetDashboard, error) {
	asset, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return nil, err
	}
	return s.buildDashboard(asset)
}

// PortfolioOverview derives the dashboard for every active asset and
// aggregates P/L, cost basis, dividends, and ROI portfolio-wide.
func (s *ReportService) PortfolioOverview(filter model.AssetFilter) (*model.PortfolioOverview, error) {
	assets, err := s.assetRepo.GetAssets(filter)
	if err != nil {
		return nil, err
	}

	overview := &model.PortfolioOverview{Assets: []model.AssetDashboard{}}
	var totalProfit, totalInvested, totalDividends float64

	for _, asset := range assets {
		dashboard, err := s.buildDashboard(asset)
		if err != nil {
			log.Error().Err(err).Str("asset_id", asset.ID).Str("symbol", asset.Symbol).
				Msg("skipping asset in overview")
			continue
		}

		overview.Assets = append(overview.Assets, *dashboard)
		addBreakdown(&overview.RealizedPL, dashboard.RealizedPL)
		addBreakdown(&overview.UnrealizedPL, dashboard.UnrealizedPL)
		addBreakdown(&overview.TotalPL, dashboard.TotalPL)
		overview.TotalCostBasis += dashboard.CostBasis
		if dashboard.BuyOpportunity {
			overview.BuyOpportunities++
		}

		invested, dividends, err := s.cashTotals(asset.ID)
		if err != nil {
			return nil, err
		}
		totalInvested += invested
		totalDividends += dividends
		totalProfit += dashboard.TotalPL.Combined + dividends
	}

	overview.TotalInvested = round(totalInvested)
	overview.TotalDividends = round(totalDividends)
	overview.ROI = RatioOrNil(totalProfit, overview.TotalCostBasis)

	return overview, nil
}

func (s *ReportService) buildDashboard(asset model.Asset) (*model.AssetDashboard, error) {
	currentPrice, _, err := s.CurrentPrice(asset)
	if err != nil {
		return nil, err
	}

	wallets, err := s.walletRepo.GetWalletsByAsset(asset.ID, false)
	if err != nil {
		return nil, err
	}

	dashboard := &model.AssetDashboard{
		AssetID:      asset.ID,
		Symbol:       asset.Symbol,
		Name:         asset.Name,
		CurrentPrice: currentPrice,
		Wallets:      []model.WalletReport{},
		AnnualBudget: asset.AnnualBudget,
	}

	var costBasis, tiedUp float64
	for _, w := range wallets {
		s.accumulateWallet(dashboard, w, currentPrice)
		costBasis += w.TotalInvestment
		if w.TotalShares > 0 {
			tiedUp += w.TotalInvestment * w.RemainingShares / w.TotalShares
		}
	}

	dashboard.RealizedPL.Combined = round(dashboard.RealizedPL.Swing + dashboard.RealizedPL.Hold)
	dashboard.UnrealizedPL.Combined = round(dashboard.UnrealizedPL.Swing + dashboard.UnrealizedPL.Hold)
	dashboard.TotalPL = model.PLBreakdown{
		Swing:    round(dashboard.RealizedPL.Swing + dashboard.UnrealizedPL.Swing),
		Hold:     round(dashboard.RealizedPL.Hold + dashboard.UnrealizedPL.Hold),
		Combined: round(dashboard.RealizedPL.Combined + dashboard.UnrealizedPL.Combined),
	}
	dashboard.CostBasis = round(costBasis)

	_, dividends, err := s.cashTotals(asset.ID)
	if err != nil {
		return nil, err
	}
	dashboard.ROI = RatioOrNil(dashboard.TotalPL.Combined+dividends, costBasis)

	dashboard.BudgetAvailable = round(asset.AnnualBudget - tiedUp + dividends)
	dashboard.OverBudget = dashboard.BudgetAvailable < 0

	if currentPrice > 0 {
		if err := s.applyDip(dashboard, asset, currentPrice); err != nil {
			return nil, err
		}
	}

	return dashboard, nil
}

// accumulateWallet appends the wallet's report row (for open wallets) and
// folds its realized and unrealized P/L into the dashboard breakdowns.
func (s *ReportService) accumulateWallet(dashboard *model.AssetDashboard, w model.Wallet, currentPrice float64) {
	unrealized := 0.0
	if currentPrice > 0 {
		unrealized = w.RemainingShares * (currentPrice - w.BuyPrice)
	}

	if w.HoldingType == model.HoldingTypeSwing {
		dashboard.RealizedPL.Swing += w.RealizedPL
		dashboard.UnrealizedPL.Swing += unrealized
	} else {
		dashboard.RealizedPL.Hold += w.RealizedPL
		dashboard.UnrealizedPL.Hold += unrealized
	}

	if w.RemainingShares <= ShareEpsilon {
		return
	}

	pctToTarget := PercentToPrice(currentPrice, w.SellTargetPrice)
	report := model.WalletReport{
		WalletID:        w.ID,
		ProfitTargetID:  w.ProfitTargetID,
		BuyPrice:        w.BuyPrice,
		HoldingType:     w.HoldingType,
		RemainingShares: w.RemainingShares,
		SellTargetPrice: w.SellTargetPrice,
		PercentToTarget: pctToTarget,
		TargetStatus:    ClassifyTargetStatus(pctToTarget),
		PercentToBE:     PercentToPrice(currentPrice, w.BuyPrice),
		UnrealizedPL:    round(unrealized),
	}
	dashboard.Wallets = append(dashboard.Wallets, report)

	if dashboard.BestPctToTarget == nil || pctToTarget > *dashboard.BestPctToTarget {
		v := pctToTarget
		dashboard.BestPctToTarget = &v
		dashboard.TargetStatus = report.TargetStatus
	}
}

// applyDip computes the five-day dip against the asset's tightest entry
// target and flags a buy opportunity when a qualifying drop exists.
func (s *ReportService) applyDip(dashboard *model.AssetDashboard, asset model.Asset, currentPrice float64) error {
	entryTargets, err := s.targetRepo.GetEntryTargets(asset.ID)
	if err != nil {
		return err
	}
	if len(entryTargets) == 0 {
		return nil
	}

	threshold := entryTargets[0].DropPercent
	for _, et := range entryTargets[1:] {
		if et.DropPercent < threshold {
			threshold = et.DropPercent
		}
	}

	closes, err := s.priceRepo.GetRecentCloses(asset.ID, FiveDayWindow)
	if err != nil {
		return err
	}

	dashboard.FiveDayDip = FiveDayDip(currentPrice, closes, threshold)
	dashboard.BuyOpportunity = dashboard.FiveDayDip != nil

	return nil
}

// cashTotals sums an asset's buy investment and its dividend/SLP cash.
func (s *ReportService) cashTotals(assetID string) (invested, dividends float64, err error) {
	transactions, err := s.transactionRepo.GetTransactionsByAsset(assetID)
	if err != nil {
		return 0, 0, err
	}

	for _, t := range transactions {
		switch t.Action {
		case model.ActionBuy:
			invested += t.Investment
		case model.ActionDividend, model.ActionSLP:
			dividends += t.Amount
		}
	}

	return invested, dividends, nil
}

func addBreakdown(dst *model.PLBreakdown, src model.PLBreakdown) {
	dst.Swing = round(dst.Swing + src.Swing)
	dst.Hold = round(dst.Hold + src.Hold)
	dst.Combined = round(dst.Combined + src.Combined)
}
