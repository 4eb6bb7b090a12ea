package backtest

import (
	"math"

	"GlickoLab/internal/domain/models"
)

const (
	msPerHour      = 1000.0 * 60.0 * 60.0
	msPerYear      = 365.25 * 24.0 * 60.0 * 60.0 * 1000.0
	annualRiskFree = 0.02
	periodsPerYear = 365.25
)

// analyzePerformance reduces an equity curve and order ledger to the summary
// metrics. Every degenerate denominator yields 0, with one exception: a
// profit factor with gains and no losses is +Inf.
func analyzePerformance(curve []models.EquityPoint, orders []models.Order, initialValue float64, startTime, endTime int64) models.BacktestResult {
	var res models.BacktestResult
	if len(curve) == 0 {
		return res
	}

	finalValue := curve[len(curve)-1].Value
	res.TotalReturn = (finalValue - initialValue) / initialValue

	years := float64(endTime-startTime) / msPerYear
	if years > 0 {
		res.AnnualizedReturn = math.Pow(finalValue/initialValue, 1.0/years) - 1.0
	}

	// Per-step simple returns; a non-positive previous value yields 0 for
	// that step instead of a blow-up.
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if prev > 0 {
			returns = append(returns, (curve[i].Value-prev)/prev)
		} else {
			returns = append(returns, 0)
		}
	}

	if len(returns) > 0 {
		mean := 0.0
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))

		variance := 0.0
		for _, r := range returns {
			d := r - mean
			variance += d * d
		}
		variance /= float64(len(returns))
		volatility := math.Sqrt(variance)

		riskFree := annualRiskFree / periodsPerYear
		if volatility > 0 {
			res.SharpeRatio = (mean - riskFree) / volatility * math.Sqrt(periodsPerYear)
		}

		// Downside deviation over the below-mean returns.
		downsideVar := 0.0
		downsideN := 0
		for _, r := range returns {
			if r < mean {
				d := r - mean
				downsideVar += d * d
				downsideN++
			}
		}
		if downsideN > 0 {
			downside := math.Sqrt(downsideVar / float64(downsideN))
			if downside > 0 {
				res.SortinoRatio = (mean - riskFree) / downside * math.Sqrt(periodsPerYear)
			}
		}
	}

	// Max drawdown against the running peak, seeded with the initial value.
	peak := initialValue
	for _, pt := range curve {
		if pt.Value > peak {
			peak = pt.Value
		}
		if dd := (peak - pt.Value) / peak; dd > res.MaxDrawdown {
			res.MaxDrawdown = dd
		}
	}

	// Trade statistics come from the SELL side of the ledger only.
	var totalTrades, wins int
	var grossProfit, grossLoss float64
	for _, o := range orders {
		if o.Side != models.SideSell || o.ProfitLoss == nil {
			continue
		}
		totalTrades++
		pl := *o.ProfitLoss
		if pl > 0 {
			wins++
			grossProfit += pl
		} else if pl < 0 {
			grossLoss += -pl
		}
	}
	res.TotalTrades = totalTrades
	if totalTrades > 0 {
		res.WinRatio = float64(wins) / float64(totalTrades)
	}
	switch {
	case grossLoss > 0:
		res.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		res.ProfitFactor = math.Inf(1)
	}

	// Round-trip durations by matching each SELL to the last unmatched BUY
	// for the same symbol.
	openAt := make(map[string]int64)
	var totalHours float64
	var matched int
	for _, o := range orders {
		switch o.Side {
		case models.SideBuy:
			openAt[o.Symbol] = o.Timestamp
		case models.SideSell:
			if entry, ok := openAt[o.Symbol]; ok {
				delete(openAt, o.Symbol)
				totalHours += float64(o.Timestamp-entry) / msPerHour
				matched++
			}
		}
	}
	if matched > 0 {
		res.AvgTradeDuration = totalHours / float64(matched)
	}

	return res
}
