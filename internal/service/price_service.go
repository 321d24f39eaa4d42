package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/pricefeed"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// refreshConcurrency bounds parallel feed requests during a full refresh.
const refreshConcurrency = 4

// PriceService manages the stored daily-close series per asset: fetching the
// latest close from the feed, backfilling history, and resolving the quote
// the dashboards display.
type PriceService struct {
	assetRepo       *repository.AssetRepository
	priceRepo       *repository.PriceRepository
	transactionRepo *repository.TransactionRepository
	feedClient      pricefeed.Client
}

// NewPriceService creates a new PriceService with the provided dependencies.
func NewPriceService(
	assetRepo *repository.AssetRepository,
	priceRepo *repository.PriceRepository,
	transactionRepo *repository.TransactionRepository,
	feedClient pricefeed.Client,
) *PriceService {
	return &PriceService{
		assetRepo:       assetRepo,
		priceRepo:       priceRepo,
		transactionRepo: transactionRepo,
		feedClient:      feedClient,
	}
}

// GetPrices retrieves stored closes for an asset within a date range.
func (s *PriceService) GetPrices(assetID string, startDate, endDate time.Time) ([]model.AssetPrice, error) {
	return s.priceRepo.GetPrices(assetID, startDate, endDate)
}

// GetQuote resolves the asset's current display price: the test-price
// override when set, otherwise the latest stored close.
func (s *PriceService) GetQuote(assetID string) (model.PriceQuote, error) {
	asset, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return model.PriceQuote{}, err
	}

	if asset.TestPrice > 0 {
		return model.PriceQuote{
			AssetID:     asset.ID,
			Symbol:      asset.Symbol,
			Price:       asset.TestPrice,
			IsTestPrice: true,
			AsOf:        time.Now().UTC(),
		}, nil
	}

	latest, err := s.priceRepo.GetLatestPrice(assetID)
	if err != nil {
		return model.PriceQuote{}, err
	}

	return model.PriceQuote{
		AssetID: asset.ID,
		Symbol:  asset.Symbol,
		Price:   latest.Price,
		AsOf:    latest.Date,
	}, nil
}

// UpdateCurrentPrice ensures yesterday's close is stored for the asset,
// fetching from the feed when missing. Returns the stored price and whether
// a new row was inserted. When the feed has no close for yesterday (weekend,
// holiday) the most recent close it does have is used instead.
func (s *PriceService) UpdateCurrentPrice(ctx context.Context, assetID string) (model.AssetPrice, bool, error) {
	asset, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return model.AssetPrice{}, false, err
	}

	if asset.Symbol == "" {
		return model.AssetPrice{}, false, apperrors.ErrInvalidSymbol
	}

	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	existing, err := s.priceRepo.GetPrices(assetID, yesterday, yesterday)
	if err != nil {
		return model.AssetPrice{}, false, err
	}
	if len(existing) > 0 {
		return existing[0], false, nil
	}

	chart, err := s.feedClient.RecentCloses(ctx, asset.Symbol)
	if err != nil {
		return model.AssetPrice{}, false, err
	}

	var price model.AssetPrice
	if close, ok := chart.CloseForDate(yesterday); ok {
		price = model.AssetPrice{
			ID:      uuid.New().String(),
			AssetID: asset.ID,
			Date:    yesterday,
			Price:   close.Price,
		}
	} else {
		last, ok := chart.LastClose()
		if !ok {
			return model.AssetPrice{}, false, fmt.Errorf("no closes available for %s", asset.Symbol)
		}

		fallbackDate := last.Date.UTC().Truncate(24 * time.Hour)
		stored, err := s.priceRepo.GetPrices(assetID, fallbackDate, fallbackDate)
		if err != nil {
			return model.AssetPrice{}, false, err
		}
		if len(stored) > 0 {
			return stored[0], false, nil
		}

		price = model.AssetPrice{
			ID:      uuid.New().String(),
			AssetID: asset.ID,
			Date:    fallbackDate,
			Price:   last.Price,
		}
	}

	if err := s.priceRepo.InsertPrice(ctx, price); err != nil {
		return model.AssetPrice{}, false, err
	}

	return price, true, nil
}

// BackfillHistory fills every missing daily close between the asset's oldest
// transaction and yesterday with feed data, in one batch insert. Returns the
// number of rows added.
func (s *PriceService) BackfillHistory(ctx context.Context, assetID string) (int, error) {
	asset, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return 0, err
	}

	if asset.Symbol == "" {
		return 0, apperrors.ErrInvalidSymbol
	}

	oldestDate := s.transactionRepo.GetOldestTransactionDate(assetID)
	if oldestDate.IsZero() {
		return 0, fmt.Errorf("no transactions found for asset %s", assetID)
	}

	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	existing, err := s.priceRepo.GetPrices(assetID, oldestDate, yesterday)
	if err != nil {
		return 0, err
	}

	missingDates := buildMissingDatesMap(existing, oldestDate, yesterday)
	if len(missingDates) == 0 {
		return 0, nil // nothing to do
	}

	chart, err := s.feedClient.ClosesByDateRange(ctx, asset.Symbol, oldestDate, yesterday)
	if err != nil {
		return 0, err
	}

	missing := filterMissingPrices(chart.Closes, missingDates, assetID)
	if len(missing) == 0 {
		return 0, nil
	}

	if err := s.priceRepo.InsertPrices(ctx, missing); err != nil {
		return 0, err
	}

	return len(missing), nil
}

// RefreshAll updates the current price of every active asset with a symbol,
// fetching in parallel with bounded concurrency. Assets without a symbol or
// with a test-price override are skipped. Individual feed failures are
// collected, not fatal.
func (s *PriceService) RefreshAll(ctx context.Context) (model.PriceRefreshResult, error) {
	assets, err := s.assetRepo.GetAssets(model.AssetFilter{IncludeHidden: true})
	if err != nil {
		return model.PriceRefreshResult{}, err
	}

	type outcome struct {
		symbol   string
		inserted bool
		err      error
	}

	results := make([]outcome, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for i, asset := range assets {
		i, asset := i, asset
		if asset.Symbol == "" || asset.TestPrice > 0 {
			results[i] = outcome{symbol: asset.Symbol}
			continue
		}

		g.Go(func() error {
			_, inserted, err := s.UpdateCurrentPrice(gctx, asset.ID)
			results[i] = outcome{symbol: asset.Symbol, inserted: inserted, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.PriceRefreshResult{}, err
	}

	var result model.PriceRefreshResult
	for _, r := range results {
		switch {
		case r.err != nil:
			log.Error().Err(r.err).Str("symbol", r.symbol).Msg("price refresh failed")
			result.Failed = append(result.Failed, r.symbol)
		case r.inserted:
			result.Refreshed++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

// buildMissingDatesMap indexes which dates in [startDate, endDate] have no
// stored close yet.
func buildMissingDatesMap(existing []model.AssetPrice, startDate, endDate time.Time) map[string]bool {
	existingDates := make(map[string]bool, len(existing))
	for _, p := range existing {
		existingDates[p.Date.UTC().Truncate(24*time.Hour).Format(repository.DateFormat)] = true
	}

	missing := make(map[string]bool)
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		key := d.UTC().Truncate(24 * time.Hour).Format(repository.DateFormat)
		if !existingDates[key] {
			missing[key] = true
		}
	}

	return missing
}

// filterMissingPrices keeps only the feed closes whose dates are missing
// from storage.
func filterMissingPrices(closes []pricefeed.Close, missingDates map[string]bool, assetID string) []model.AssetPrice {
	prices := make([]model.AssetPrice, 0, len(missingDates))
	for _, c := range closes {
		day := c.Date.UTC().Truncate(24 * time.Hour)
		if missingDates[day.Format(repository.DateFormat)] {
			prices = append(prices, model.AssetPrice{
				ID:      uuid.New().String(),
				AssetID: assetID,
				Date:    day,
				Price:   c.Price,
			})
		}
	}
	return prices
}
