// Package dipscan detects dip/recovery cycles in a historical daily-close
// series and simulates a threshold-buy, recovery-sell strategy over them.
// It is a self-contained statistics routine: its only input is the price
// series, its only output is the Result.
package dipscan

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// MinDropPercent is the smallest peak-to-trough drop that counts as a dip
// cycle. Smaller wobbles are noise.
const MinDropPercent = 1.0

// Close is one daily closing price.
type Close struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Cycle is one detected dip: a local peak, the trough it fell to, and
// whether the price climbed back to the peak within the series.
type Cycle struct {
	PeakDate     time.Time  `json:"peakDate"`
	PeakPrice    float64    `json:"peakPrice"`
	TroughDate   time.Time  `json:"troughDate"`
	TroughPrice  float64    `json:"troughPrice"`
	DropPercent  float64    `json:"dropPercent"`
	Recovered    bool       `json:"recovered"`
	RecoveryDate *time.Time `json:"recoveryDate,omitempty"`
	RecoveryDays int        `json:"recoveryDays,omitempty"`
}

// Stats aggregates the detected cycles: drop-magnitude distribution,
// recovery rate, and recovery-time distribution over recovered cycles.
type Stats struct {
	Cycles             int     `json:"cycles"`
	MeanDrop           float64 `json:"meanDrop"`
	MedianDrop         float64 `json:"medianDrop"`
	StdDevDrop         float64 `json:"stdDevDrop"`
	MaxDrop            float64 `json:"maxDrop"`
	RecoveryRate       float64 `json:"recoveryRate"`
	MeanRecoveryDays   float64 `json:"meanRecoveryDays"`
	MedianRecoveryDays float64 `json:"medianRecoveryDays"`
	P25RecoveryDays    float64 `json:"p25RecoveryDays"`
	P75RecoveryDays    float64 `json:"p75RecoveryDays"`
}

// Trade is one simulated buy-at-threshold, sell-at-recovery round trip. An
// unrecovered dip closes at the final price in the series.
type Trade struct {
	BuyDate    time.Time `json:"buyDate"`
	BuyPrice   float64   `json:"buyPrice"`
	SellDate   time.Time `json:"sellDate"`
	SellPrice  float64   `json:"sellPrice"`
	GainPct    float64   `json:"gainPct"`
	ClosedOpen bool      `json:"closedOpen"`
}

// Simulation is the outcome of trading every cycle at the suggested
// threshold with a fixed stake per trade.
type Simulation struct {
	Threshold   float64 `json:"threshold"`
	Trades      []Trade `json:"trades"`
	Wins        int     `json:"wins"`
	SuccessRate float64 `json:"successRate"`
	ROIC        float64 `json:"roic"`
	LargestGain float64 `json:"largestGainPct"`
	LargestLoss float64 `json:"largestLossPct"`
}

// Result is the full analyzer output for one symbol and lookback window.
type Result struct {
	Symbol             string     `json:"symbol"`
	Months             int        `json:"months"`
	From               time.Time  `json:"from"`
	To                 time.Time  `json:"to"`
	Cycles             []Cycle    `json:"cycles"`
	Stats              Stats      `json:"stats"`
	SuggestedThreshold float64    `json:"suggestedThreshold"`
	Simulation         Simulation `json:"simulation"`
}

// Analyze scans the close series (oldest first) for dip/recovery cycles,
// computes their aggregate statistics, derives a suggested buy threshold,
// and simulates trading that threshold. An empty or flat series yields a
// Result with no cycles.
func Analyze(symbol string, closes []Close, months int) Result {
	result := Result{
		Symbol: symbol,
		Months: months,
		Cycles: detectCycles(closes),
	}
	if len(closes) > 0 {
		result.From = closes[0].Date
		result.To = closes[len(closes)-1].Date
	}

	result.Stats = computeStats(result.Cycles)
	result.SuggestedThreshold = suggestThreshold(result.Cycles)
	result.Simulation = simulate(closes, result.SuggestedThreshold)

	return result
}

// detectCycles walks the series with a running peak. A cycle opens when the
// price falls at least MinDropPercent below the peak, deepens while the
// price keeps making lows, and closes when the price regains the peak. A
// drawdown still open at the end of the series is recorded as unrecovered.
func detectCycles(closes []Close) []Cycle {
	cycles := []Cycle{}
	if len(closes) < 2 {
		return cycles
	}

	peak := closes[0]
	var trough Close
	inDip := false

	for _, c := range closes[1:] {
		if !inDip {
			if c.Price >= peak.Price {
				peak = c
				continue
			}
			if dropPercent(peak.Price, c.Price) >= MinDropPercent {
				inDip = true
				trough = c
			}
			continue
		}

		if c.Price < trough.Price {
			trough = c
		}
		if c.Price >= peak.Price {
			recoveryDate := c.Date
			cycles = append(cycles, Cycle{
				PeakDate:     peak.Date,
				PeakPrice:    peak.Price,
				TroughDate:   trough.Date,
				TroughPrice:  trough.Price,
				DropPercent:  dropPercent(peak.Price, trough.Price),
				Recovered:    true,
				RecoveryDate: &recoveryDate,
				RecoveryDays: daysBetween(trough.Date, c.Date),
			})
			peak = c
			inDip = false
		}
	}

	if inDip {
		cycles = append(cycles, Cycle{
			PeakDate:    peak.Date,
			PeakPrice:   peak.Price,
			TroughDate:  trough.Date,
			TroughPrice: trough.Price,
			DropPercent: dropPercent(peak.Price, trough.Price),
		})
	}

	return cycles
}

func computeStats(cycles []Cycle) Stats {
	s := Stats{Cycles: len(cycles)}
	if len(cycles) == 0 {
		return s
	}

	drops := make([]float64, 0, len(cycles))
	recoveryDays := []float64{}
	recovered := 0

	for _, c := range cycles {
		drops = append(drops, c.DropPercent)
		if c.DropPercent > s.MaxDrop {
			s.MaxDrop = c.DropPercent
		}
		if c.Recovered {
			recovered++
			recoveryDays = append(recoveryDays, float64(c.RecoveryDays))
		}
	}

	s.MeanDrop = stat.Mean(drops, nil)
	s.MedianDrop = median(drops)
	if len(drops) > 1 {
		s.StdDevDrop = stat.StdDev(drops, nil)
	}
	s.RecoveryRate = float64(recovered) / float64(len(cycles))

	if len(recoveryDays) > 0 {
		s.MeanRecoveryDays = stat.Mean(recoveryDays, nil)
		s.MedianRecoveryDays = median(recoveryDays)
		s.P25RecoveryDays = quantile(0.25, recoveryDays)
		s.P75RecoveryDays = quantile(0.75, recoveryDays)
	}

	return s
}

// suggestThreshold recommends a buy trigger: the median drop over recovered
// cycles, so that roughly half the historical dips would have filled a buy
// placed there. Falls back to the all-cycle median when nothing recovered.
func suggestThreshold(cycles []Cycle) float64 {
	recovered := []float64{}
	all := []float64{}
	for _, c := range cycles {
		all = append(all, c.DropPercent)
		if c.Recovered {
			recovered = append(recovered, c.DropPercent)
		}
	}

	if len(recovered) > 0 {
		return median(recovered)
	}
	return median(all)
}

// simulate buys whenever the price first falls threshold percent below the
// running peak and sells when the price regains that peak. A position still
// open at the end of the series closes at the final price. Each trade risks
// the same stake, so ROIC is the mean trade return.
func simulate(closes []Close, threshold float64) Simulation {
	sim := Simulation{Threshold: threshold, Trades: []Trade{}}
	if threshold <= 0 || len(closes) < 2 {
		return sim
	}

	peak := closes[0]
	holding := false
	var entry Close
	var entryPeak float64

	for _, c := range closes[1:] {
		if holding {
			if c.Price >= entryPeak {
				sim.Trades = append(sim.Trades, makeTrade(entry, c, false))
				holding = false
				peak = c
			}
			continue
		}

		if c.Price >= peak.Price {
			peak = c
			continue
		}
		if dropPercent(peak.Price, c.Price) >= threshold {
			holding = true
			entry = c
			entryPeak = peak.Price
		}
	}

	if holding {
		sim.Trades = append(sim.Trades, makeTrade(entry, closes[len(closes)-1], true))
	}

	if len(sim.Trades) == 0 {
		return sim
	}

	var totalGain float64
	sim.LargestLoss = sim.Trades[0].GainPct
	for _, t := range sim.Trades {
		totalGain += t.GainPct
		if t.GainPct > 0 {
			sim.Wins++
		}
		if t.GainPct > sim.LargestGain {
			sim.LargestGain = t.GainPct
		}
		if t.GainPct < sim.LargestLoss {
			sim.LargestLoss = t.GainPct
		}
	}

	sim.SuccessRate = float64(sim.Wins) / float64(len(sim.Trades))
	sim.ROIC = totalGain / float64(len(sim.Trades))

	return sim
}

func makeTrade(entry, exit Close, closedOpen bool) Trade {
	return Trade{
		BuyDate:    entry.Date,
		BuyPrice:   entry.Price,
		SellDate:   exit.Date,
		SellPrice:  exit.Price,
		GainPct:    (exit.Price/entry.Price - 1) * 100,
		ClosedOpen: closedOpen,
	}
}

// dropPercent is the positive magnitude of the fall from peak to price.
func dropPercent(peak, price float64) float64 {
	if peak == 0 {
		return 0
	}
	return (1 - price/peak) * 100
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func median(data []float64) float64 {
	return quantile(0.5, data)
}

func quantile(p float64, data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
