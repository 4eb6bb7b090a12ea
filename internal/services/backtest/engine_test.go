package backtest

import (
	"context"
	"math"
	"testing"

	"GlickoLab/internal/domain/models"
)

func newTestEngine() *Engine {
	return NewEngine(NewSignalGenerator(), nil)
}

func engineConfig() models.BacktestConfig {
	return models.BacktestConfig{
		BaseAsset:       "BTC",
		QuoteAsset:      "USDT",
		ZScoreThreshold: 1.0,
		MovingAverages:  2,
		ProfitPercent:   5.0,
		StopLossPercent: 2.5,
		StartTime:       0,
		EndTime:         10_000,
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := engineConfig()
	cfg.MovingAverages = 0
	if _, err := newTestEngine().Run(cfg, nil); err == nil {
		t.Fatalf("expected error for invalid config")
	}
}

func TestRunNoRatings(t *testing.T) {
	res, err := newTestEngine().Run(engineConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTrades != 0 || len(res.Orders) != 0 || res.TotalReturn != 0 {
		t.Fatalf("empty run must be all zeros, got %+v", res)
	}
}

func TestRunBuyThenZScoreExit(t *testing.T) {
	// Signals with period 2: BUY at t=3000 (z=3), SELL at t=4000 (z=-23).
	// Synthetic prices: 1520 -> 101.3333, 1400 -> 93.3333.
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
		snap("BTCUSDT", 3000, 1520),
		snap("BTCUSDT", 4000, 1400),
	}
	res, err := newTestEngine().Run(engineConfig(), ratings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Orders) != 2 {
		t.Fatalf("expected entry+exit, got %+v", res.Orders)
	}
	buy, sell := res.Orders[0], res.Orders[1]
	if buy.Side != models.SideBuy || buy.Timestamp != 3000 {
		t.Fatalf("buy order wrong: %+v", buy)
	}
	// 95% of 10000 at 101.3333 is exactly 93.75 units.
	if math.Abs(buy.Quantity-93.75) > 1e-9 {
		t.Fatalf("quantity = %v, want 93.75", buy.Quantity)
	}
	if sell.Side != models.SideSell || sell.Reason != models.ReasonExitZScore {
		t.Fatalf("sell order wrong: %+v", sell)
	}
	if sell.ProfitLoss == nil || math.Abs(*sell.ProfitLoss-(-750)) > 1e-6 {
		t.Fatalf("profit = %+v, want -750", sell.ProfitLoss)
	}

	// Final equity 9250 on 10000 initial.
	if math.Abs(res.TotalReturn-(-0.075)) > 1e-9 {
		t.Fatalf("total return = %v, want -0.075", res.TotalReturn)
	}
	if res.TotalTrades != 1 || res.WinRatio != 0 || res.ProfitFactor != 0 {
		t.Fatalf("trade stats wrong: %+v", res)
	}
}

func TestRunSignalExitPreemptsStopCheck(t *testing.T) {
	// The t=4000 tick breaches the stop level AND crosses the z threshold
	// downward; the signal is processed first, so the exit books as
	// EXIT_ZSCORE rather than EXIT_STOP.
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
		snap("BTCUSDT", 3000, 1520),
		snap("BTCUSDT", 4000, 1400), // price 93.33 < stop 98.8
	}
	res, err := newTestEngine().Run(engineConfig(), ratings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Orders[1].Reason != models.ReasonExitZScore {
		t.Fatalf("reason = %v, want EXIT_ZSCORE", res.Orders[1].Reason)
	}
}

func TestRunRepeatedBuysKeepSinglePosition(t *testing.T) {
	// Steadily rising ratings keep signalling BUY; only the first can fill.
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1504),
		snap("BTCUSDT", 3000, 1508),
		snap("BTCUSDT", 4000, 1512),
		snap("BTCUSDT", 5000, 1516),
	}
	res, err := newTestEngine().Run(engineConfig(), ratings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buys := 0
	for _, o := range res.Orders {
		if o.Side == models.SideBuy {
			buys++
		}
	}
	if buys != 1 {
		t.Fatalf("expected exactly one fill, got %d (%+v)", buys, res.Orders)
	}
}

func TestRunIgnoresOtherSymbols(t *testing.T) {
	ratings := []models.RatingSnapshot{
		snap("ETHUSDT", 1000, 1500),
		snap("ETHUSDT", 2000, 1510),
		snap("ETHUSDT", 3000, 1520),
	}
	res, err := newTestEngine().Run(engineConfig(), ratings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Orders) != 0 {
		t.Fatalf("other symbols must not trade BTCUSDT, got %+v", res.Orders)
	}
}

func TestRunDeterministic(t *testing.T) {
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
		snap("BTCUSDT", 3000, 1520),
		snap("BTCUSDT", 4000, 1400),
	}
	a, err := newTestEngine().Run(engineConfig(), ratings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := newTestEngine().Run(engineConfig(), ratings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.TotalReturn != b.TotalReturn || len(a.Orders) != len(b.Orders) || a.SharpeRatio != b.SharpeRatio {
		t.Fatalf("same inputs diverged: %+v vs %+v", a, b)
	}
}

func TestWindowedRun(t *testing.T) {
	monthMs := int64(30) * 24 * 60 * 60 * 1000
	one := 1
	cfg := engineConfig()
	cfg.WindowSize = &one
	cfg.StartTime = 0
	cfg.EndTime = 2 * monthMs

	// Ratings only inside the first window; the later windows are skipped.
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
		snap("BTCUSDT", 3000, 1520),
		snap("BTCUSDT", 4000, 1400),
	}
	w := NewWindowedEngine(newTestEngine(), 2, nil)
	results, err := w.Run(context.Background(), cfg, ratings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 populated window, got %d", len(results))
	}
	if results[0].TotalTrades != 1 {
		t.Fatalf("window result wrong: %+v", results[0])
	}
}

func TestWindowedRunOverlap(t *testing.T) {
	monthMs := int64(30) * 24 * 60 * 60 * 1000
	one := 1
	cfg := engineConfig()
	cfg.WindowSize = &one
	cfg.StartTime = 0
	cfg.EndTime = 2 * monthMs

	// A rating in every half-window populates all three overlapping windows:
	// [0,m], [m/2,3m/2], [m,2m].
	var ratings []models.RatingSnapshot
	for ts := int64(0); ts <= 2*monthMs; ts += monthMs / 4 {
		ratings = append(ratings, snap("BTCUSDT", ts, 1500))
	}
	w := NewWindowedEngine(newTestEngine(), 3, nil)
	results, err := w.Run(context.Background(), cfg, ratings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(results))
	}
}

func TestWindowedRunInvalidConfig(t *testing.T) {
	cfg := engineConfig()
	cfg.EndTime = cfg.StartTime
	w := NewWindowedEngine(newTestEngine(), 2, nil)
	if _, err := w.Run(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for invalid config")
	}
}

func TestWindowedRunCancelled(t *testing.T) {
	monthMs := int64(30) * 24 * 60 * 60 * 1000
	one := 1
	cfg := engineConfig()
	cfg.WindowSize = &one
	cfg.EndTime = 2 * monthMs

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWindowedEngine(newTestEngine(), 2, nil)
	if _, err := w.Run(ctx, cfg, []models.RatingSnapshot{snap("BTCUSDT", 1000, 1500)}); err == nil {
		t.Fatalf("expected context error")
	}
}
