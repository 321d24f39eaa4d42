package service

import (
	"context"
	"fmt"
	"time"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/dipscan"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/pricefeed"
)

// DipAnalysis lookback bounds, in months.
const (
	DefaultLookbackMonths = 12
	MaxLookbackMonths     = 60
)

// DipService feeds historical closes from the price feed into the dip-cycle
// analyzer.
type DipService struct {
	feedClient pricefeed.Client
}

// NewDipService creates a new DipService with the provided feed client.
func NewDipService(feedClient pricefeed.Client) *DipService {
	return &DipService{feedClient: feedClient}
}

// AnalyzeSymbol fetches the symbol's daily closes over the lookback window
// and runs the dip-cycle analysis on them.
func (s *DipService) AnalyzeSymbol(ctx context.Context, symbol string, months int) (dipscan.Result, error) {
	if symbol == "" {
		return dipscan.Result{}, apperrors.ErrInvalidSymbol
	}
	if months <= 0 {
		months = DefaultLookbackMonths
	}
	if months > MaxLookbackMonths {
		months = MaxLookbackMonths
	}

	end := time.Now().UTC()
	start := end.AddDate(0, -months, 0)

	chart, err := s.feedClient.ClosesByDateRange(ctx, symbol, start, end)
	if err != nil {
		return dipscan.Result{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToAnalyzeDips, err)
	}

	closes := make([]dipscan.Close, len(chart.Closes))
	for i, c := range chart.Closes {
		closes[i] = dipscan.Close{Date: c.Date, Price: c.Price}
	}

	return dipscan.Analyze(symbol, closes, months), nil
}
