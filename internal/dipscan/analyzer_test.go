package dipscan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/dipscan"
)

func series(prices ...float64) []dipscan.Close {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]dipscan.Close, len(prices))
	for i, p := range prices {
		closes[i] = dipscan.Close{Date: base.AddDate(0, 0, i), Price: p}
	}
	return closes
}

func TestAnalyze_EmptyAndFlatSeries(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		result := dipscan.Analyze("TEST", nil, 12)

		assert.Empty(t, result.Cycles)
		assert.Zero(t, result.SuggestedThreshold)
		assert.Empty(t, result.Simulation.Trades)
	})

	t.Run("monotonically rising series has no cycles", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 101, 102, 103), 12)

		assert.Empty(t, result.Cycles)
		assert.Equal(t, 0, result.Stats.Cycles)
	})

	t.Run("wobble under the noise floor is ignored", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 99.5, 100, 99.2, 100), 12)

		assert.Empty(t, result.Cycles)
	})
}

func TestAnalyze_DetectsCycles(t *testing.T) {
	t.Run("single recovered cycle", func(t *testing.T) {
		// Peak 100, trough 90, recovery on the final close.
		result := dipscan.Analyze("TEST", series(100, 95, 90, 92, 101), 12)

		require.Len(t, result.Cycles, 1)
		c := result.Cycles[0]

		assert.InDelta(t, 100, c.PeakPrice, 1e-9)
		assert.InDelta(t, 90, c.TroughPrice, 1e-9)
		assert.InDelta(t, 10, c.DropPercent, 1e-9)
		assert.True(t, c.Recovered)
		require.NotNil(t, c.RecoveryDate)
		assert.Equal(t, 2, c.RecoveryDays)
	})

	t.Run("unrecovered trailing drawdown is recorded", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 97, 90), 12)

		require.Len(t, result.Cycles, 1)
		c := result.Cycles[0]

		assert.InDelta(t, 10, c.DropPercent, 1e-9)
		assert.False(t, c.Recovered)
		assert.Nil(t, c.RecoveryDate)
	})

	t.Run("consecutive cycles are tracked independently", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 94, 100, 100, 92, 100), 12)

		require.Len(t, result.Cycles, 2)
		assert.InDelta(t, 6, result.Cycles[0].DropPercent, 1e-9)
		assert.InDelta(t, 8, result.Cycles[1].DropPercent, 1e-9)
		assert.True(t, result.Cycles[0].Recovered)
		assert.True(t, result.Cycles[1].Recovered)
	})

	t.Run("rising peak resets the baseline", func(t *testing.T) {
		// The dip is measured against the 110 peak, not the initial 100.
		result := dipscan.Analyze("TEST", series(100, 110, 99, 110), 12)

		require.Len(t, result.Cycles, 1)
		assert.InDelta(t, 110, result.Cycles[0].PeakPrice, 1e-9)
		assert.InDelta(t, 10, result.Cycles[0].DropPercent, 1e-9)
	})
}

func TestAnalyze_Stats(t *testing.T) {
	result := dipscan.Analyze("TEST", series(100, 94, 100, 100, 92, 100), 12)

	s := result.Stats
	assert.Equal(t, 2, s.Cycles)
	assert.InDelta(t, 7, s.MeanDrop, 1e-9)
	assert.InDelta(t, 8, s.MaxDrop, 1e-9)
	assert.InDelta(t, 1, s.RecoveryRate, 1e-9)
	assert.InDelta(t, 1.41421356, s.StdDevDrop, 1e-6)
	assert.InDelta(t, 1, s.MeanRecoveryDays, 1e-9)
	assert.InDelta(t, 1, s.P25RecoveryDays, 1e-9)
	assert.InDelta(t, 1, s.P75RecoveryDays, 1e-9)
}

func TestAnalyze_RecoveryTimeDistribution(t *testing.T) {
	// Four recovered cycles taking 1, 2, 3, and 4 days to regain their peak.
	result := dipscan.Analyze("TEST", series(
		100, 94, 100,
		92, 93, 100,
		90, 91, 92, 100,
		88, 89, 90, 91, 100,
	), 12)

	s := result.Stats
	require.Equal(t, 4, s.Cycles)
	assert.InDelta(t, 1, s.RecoveryRate, 1e-9)
	assert.InDelta(t, 2.5, s.MeanRecoveryDays, 1e-9)
	assert.InDelta(t, 1, s.P25RecoveryDays, 1e-9)
	assert.InDelta(t, 2, s.MedianRecoveryDays, 1e-9)
	assert.InDelta(t, 3, s.P75RecoveryDays, 1e-9)
}

func TestAnalyze_SuggestedThreshold(t *testing.T) {
	t.Run("median of recovered drops", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 94, 100, 100, 92, 100), 12)

		assert.InDelta(t, 6, result.SuggestedThreshold, 1e-9)
	})

	t.Run("falls back to all cycles when nothing recovered", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 90), 12)

		assert.InDelta(t, 10, result.SuggestedThreshold, 1e-9)
	})
}

func TestAnalyze_Simulation(t *testing.T) {
	t.Run("buys at the threshold and sells on recovery", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 94, 100, 100, 92, 100), 12)

		sim := result.Simulation
		require.Len(t, sim.Trades, 2)

		first := sim.Trades[0]
		assert.InDelta(t, 94, first.BuyPrice, 1e-9)
		assert.InDelta(t, 100, first.SellPrice, 1e-9)
		assert.False(t, first.ClosedOpen)
		assert.InDelta(t, 6.3829787, first.GainPct, 1e-6)

		assert.Equal(t, 2, sim.Wins)
		assert.InDelta(t, 1, sim.SuccessRate, 1e-9)
		assert.InDelta(t, (first.GainPct+sim.Trades[1].GainPct)/2, sim.ROIC, 1e-9)
	})

	t.Run("open position closes at the final price", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 90), 12)

		sim := result.Simulation
		require.Len(t, sim.Trades, 1)

		trade := sim.Trades[0]
		assert.True(t, trade.ClosedOpen)
		assert.InDelta(t, 90, trade.BuyPrice, 1e-9)
		assert.InDelta(t, 90, trade.SellPrice, 1e-9)
		assert.Zero(t, sim.Wins)
	})

	t.Run("loss on an unrecovered deepening dip", func(t *testing.T) {
		result := dipscan.Analyze("TEST", series(100, 94, 100, 90, 80), 12)

		sim := result.Simulation
		require.NotEmpty(t, sim.Trades)

		last := sim.Trades[len(sim.Trades)-1]
		assert.True(t, last.ClosedOpen)
		assert.Less(t, last.GainPct, 0.0)
		assert.InDelta(t, last.GainPct, sim.LargestLoss, 1e-9)
	})
}
