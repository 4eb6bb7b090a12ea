package backtest

import (
	"math"
	"testing"

	"GlickoLab/internal/domain/models"
)

func pl(v float64) *float64 { return &v }

func TestAnalyzePerformanceEmptyCurve(t *testing.T) {
	res := analyzePerformance(nil, nil, 10000, 0, 1000)
	if res.TotalReturn != 0 || res.AnnualizedReturn != 0 || res.SharpeRatio != 0 ||
		res.SortinoRatio != 0 || res.MaxDrawdown != 0 || res.TotalTrades != 0 ||
		res.WinRatio != 0 || res.ProfitFactor != 0 || res.AvgTradeDuration != 0 ||
		len(res.Orders) != 0 {
		t.Fatalf("empty curve must yield zero metrics, got %+v", res)
	}
}

func TestAnalyzePerformanceTotalReturn(t *testing.T) {
	curve := []models.EquityPoint{
		{Timestamp: 0, Value: 10000},
		{Timestamp: 1000, Value: 11000},
	}
	res := analyzePerformance(curve, nil, 10000, 0, 1000)
	if math.Abs(res.TotalReturn-0.1) > 1e-12 {
		t.Fatalf("total return = %v, want 0.1", res.TotalReturn)
	}
}

func TestAnalyzePerformanceAnnualizedReturn(t *testing.T) {
	yearMs := int64(365.25 * 24 * 60 * 60 * 1000)
	curve := []models.EquityPoint{
		{Timestamp: 0, Value: 10000},
		{Timestamp: yearMs, Value: 11000},
	}
	// Exactly one year: annualized equals total.
	res := analyzePerformance(curve, nil, 10000, 0, yearMs)
	if math.Abs(res.AnnualizedReturn-0.1) > 1e-9 {
		t.Fatalf("annualized = %v, want 0.1", res.AnnualizedReturn)
	}
	// Two years: (1.1)^(1/2)-1.
	res = analyzePerformance(curve, nil, 10000, 0, 2*yearMs)
	want := math.Sqrt(1.1) - 1
	if math.Abs(res.AnnualizedReturn-want) > 1e-9 {
		t.Fatalf("annualized over 2y = %v, want %v", res.AnnualizedReturn, want)
	}
}

func TestAnalyzePerformanceZeroDuration(t *testing.T) {
	curve := []models.EquityPoint{{Timestamp: 0, Value: 12000}}
	res := analyzePerformance(curve, nil, 10000, 500, 500)
	if res.AnnualizedReturn != 0 {
		t.Fatalf("zero elapsed time must yield 0 annualized, got %v", res.AnnualizedReturn)
	}
}

func TestAnalyzePerformanceMaxDrawdown(t *testing.T) {
	curve := []models.EquityPoint{
		{Timestamp: 0, Value: 10000},
		{Timestamp: 1, Value: 12000},
		{Timestamp: 2, Value: 9000},
		{Timestamp: 3, Value: 11000},
	}
	res := analyzePerformance(curve, nil, 10000, 0, 3)
	// Peak 12000 down to 9000.
	if math.Abs(res.MaxDrawdown-0.25) > 1e-12 {
		t.Fatalf("max drawdown = %v, want 0.25", res.MaxDrawdown)
	}
}

func TestAnalyzePerformanceFlatCurveZeroRatios(t *testing.T) {
	curve := []models.EquityPoint{
		{Timestamp: 0, Value: 10000},
		{Timestamp: 1, Value: 10000},
		{Timestamp: 2, Value: 10000},
	}
	res := analyzePerformance(curve, nil, 10000, 0, 2)
	if res.SharpeRatio != 0 || res.SortinoRatio != 0 || res.MaxDrawdown != 0 {
		t.Fatalf("flat curve must yield zero ratios, got %+v", res)
	}
}

func TestAnalyzePerformanceSharpeFinite(t *testing.T) {
	curve := []models.EquityPoint{
		{Timestamp: 0, Value: 10000},
		{Timestamp: 1, Value: 10100},
		{Timestamp: 2, Value: 10050},
		{Timestamp: 3, Value: 10200},
	}
	res := analyzePerformance(curve, nil, 10000, 0, 3)
	if math.IsNaN(res.SharpeRatio) || math.IsInf(res.SharpeRatio, 0) {
		t.Fatalf("sharpe = %v", res.SharpeRatio)
	}
	if math.IsNaN(res.SortinoRatio) || math.IsInf(res.SortinoRatio, 0) {
		t.Fatalf("sortino = %v", res.SortinoRatio)
	}
}

func TestAnalyzePerformanceTradeStats(t *testing.T) {
	orders := []models.Order{
		{Symbol: "BTCUSDT", Side: models.SideBuy, Timestamp: 0},
		{Symbol: "BTCUSDT", Side: models.SideSell, Timestamp: 3_600_000, ProfitLoss: pl(300)},
		{Symbol: "BTCUSDT", Side: models.SideBuy, Timestamp: 7_200_000},
		{Symbol: "BTCUSDT", Side: models.SideSell, Timestamp: 18_000_000, ProfitLoss: pl(-100)},
	}
	curve := []models.EquityPoint{{Timestamp: 0, Value: 10000}, {Timestamp: 18_000_000, Value: 10200}}
	res := analyzePerformance(curve, orders, 10000, 0, 18_000_000)

	if res.TotalTrades != 2 {
		t.Fatalf("total trades = %d, want 2", res.TotalTrades)
	}
	if math.Abs(res.WinRatio-0.5) > 1e-12 {
		t.Fatalf("win ratio = %v, want 0.5", res.WinRatio)
	}
	if math.Abs(res.ProfitFactor-3.0) > 1e-12 {
		t.Fatalf("profit factor = %v, want 3", res.ProfitFactor)
	}
	// Durations: 1h and 3h.
	if math.Abs(res.AvgTradeDuration-2.0) > 1e-9 {
		t.Fatalf("avg duration = %v hours, want 2", res.AvgTradeDuration)
	}
}

func TestAnalyzePerformanceProfitFactorNoLosses(t *testing.T) {
	orders := []models.Order{
		{Symbol: "BTCUSDT", Side: models.SideBuy, Timestamp: 0},
		{Symbol: "BTCUSDT", Side: models.SideSell, Timestamp: 1000, ProfitLoss: pl(500)},
	}
	curve := []models.EquityPoint{{Timestamp: 0, Value: 10000}, {Timestamp: 1000, Value: 10500}}
	res := analyzePerformance(curve, orders, 10000, 0, 1000)
	if !math.IsInf(res.ProfitFactor, 1) {
		t.Fatalf("profit factor with no losses = %v, want +Inf", res.ProfitFactor)
	}
}

func TestAnalyzePerformanceNoTrades(t *testing.T) {
	curve := []models.EquityPoint{{Timestamp: 0, Value: 10000}}
	res := analyzePerformance(curve, nil, 10000, 0, 1000)
	if res.TotalTrades != 0 || res.WinRatio != 0 || res.ProfitFactor != 0 || res.AvgTradeDuration != 0 {
		t.Fatalf("no trades must yield zero trade stats, got %+v", res)
	}
}
