package backtest

import (
	"math"
	"testing"

	"GlickoLab/internal/domain/models"
)

func testConfig() models.BacktestConfig {
	return models.BacktestConfig{
		BaseAsset:       "BTC",
		QuoteAsset:      "USDT",
		ZScoreThreshold: 2.0,
		MovingAverages:  200,
		ProfitPercent:   5.0,
		StopLossPercent: 2.5,
		StartTime:       0,
		EndTime:         1_000_000,
	}
}

func TestNewPortfolioSeedsEquityCurve(t *testing.T) {
	pf := newPortfolio(10000)
	if pf.cash != 10000 {
		t.Fatalf("cash = %v", pf.cash)
	}
	if len(pf.equityCurve) != 1 || pf.equityCurve[0] != (models.EquityPoint{Timestamp: 0, Value: 10000}) {
		t.Fatalf("equity curve not seeded: %+v", pf.equityCurve)
	}
}

func TestOpenPosition(t *testing.T) {
	pf := newPortfolio(10000)
	if !pf.openPosition("BTCUSDT", 50000, 1640995200000, testConfig(), 0.5) {
		t.Fatalf("open rejected")
	}
	if len(pf.positions) != 1 {
		t.Fatalf("expected one position")
	}
	pos := pf.positions["BTCUSDT"]
	if math.Abs(pos.quantity-0.1) > 1e-12 {
		t.Fatalf("quantity = %v, want 0.1", pos.quantity)
	}
	if math.Abs(pf.cash-5000) > 1e-9 {
		t.Fatalf("cash = %v, want 5000", pf.cash)
	}
	if math.Abs(pos.takeProfitPrice-52500) > 1e-9 || math.Abs(pos.stopLossPrice-48750) > 1e-9 {
		t.Fatalf("exit levels wrong: tp=%v sl=%v", pos.takeProfitPrice, pos.stopLossPrice)
	}
	if len(pf.orders) != 1 || pf.orders[0].Side != models.SideBuy || pf.orders[0].Reason != models.ReasonEntry {
		t.Fatalf("entry order wrong: %+v", pf.orders)
	}
	if pf.orders[0].ProfitLoss != nil {
		t.Fatalf("BUY order must not carry P&L")
	}
}

func TestOpenPositionRejectsDuplicate(t *testing.T) {
	pf := newPortfolio(10000)
	pf.openPosition("BTCUSDT", 100, 1000, testConfig(), 0.5)
	if pf.openPosition("BTCUSDT", 100, 2000, testConfig(), 0.5) {
		t.Fatalf("second open for same symbol must be rejected")
	}
	if len(pf.orders) != 1 {
		t.Fatalf("rejected open must not append an order")
	}
}

func TestClosePosition(t *testing.T) {
	pf := newPortfolio(10000)
	pf.openPosition("BTCUSDT", 100, 1000, testConfig(), 0.95)
	if !pf.closePosition("BTCUSDT", 110, 2000, models.ReasonExitZScore) {
		t.Fatalf("close rejected")
	}
	if len(pf.positions) != 0 {
		t.Fatalf("position not removed")
	}
	sell := pf.orders[1]
	if sell.Side != models.SideSell || sell.Reason != models.ReasonExitZScore {
		t.Fatalf("sell order wrong: %+v", sell)
	}
	if sell.ProfitLoss == nil || math.Abs(*sell.ProfitLoss-950) > 1e-9 {
		t.Fatalf("profit = %+v, want 950", sell.ProfitLoss)
	}
	if sell.ProfitLossPercent == nil || math.Abs(*sell.ProfitLossPercent-10) > 1e-9 {
		t.Fatalf("profit%% = %+v, want 10", sell.ProfitLossPercent)
	}
	if math.Abs(pf.cash-10950) > 1e-9 {
		t.Fatalf("cash = %v, want 10950", pf.cash)
	}
}

func TestClosePositionWithoutPosition(t *testing.T) {
	pf := newPortfolio(10000)
	if pf.closePosition("BTCUSDT", 100, 1000, models.ReasonExitZScore) {
		t.Fatalf("close without a position must be a no-op")
	}
}

func TestCheckExitsStopLoss(t *testing.T) {
	pf := newPortfolio(10000)
	pf.openPosition("BTCUSDT", 100, 1000, testConfig(), 0.95) // SL 97.5, TP 105
	pf.checkExits(97.5, 2000)
	if len(pf.positions) != 0 {
		t.Fatalf("stop level touch must close the position")
	}
	if pf.orders[1].Reason != models.ReasonExitStop {
		t.Fatalf("reason = %v, want EXIT_STOP", pf.orders[1].Reason)
	}
}

func TestCheckExitsStopLossBeatsTakeProfit(t *testing.T) {
	pf := newPortfolio(10000)
	cfg := testConfig()
	// Misconfigured bracket: TP 90 sits below SL 95, so one tick can
	// satisfy both exit conditions at once.
	cfg.ProfitPercent = -10
	cfg.StopLossPercent = 5
	pf.openPosition("BTCUSDT", 100, 1000, cfg, 0.95)
	pf.checkExits(92, 2000)
	if len(pf.positions) != 0 {
		t.Fatalf("position must close when both levels trigger")
	}
	if pf.orders[1].Reason != models.ReasonExitStop {
		t.Fatalf("reason = %v, want EXIT_STOP when stop and profit trigger together", pf.orders[1].Reason)
	}
}

func TestCheckExitsTakeProfit(t *testing.T) {
	pf := newPortfolio(10000)
	pf.openPosition("BTCUSDT", 100, 1000, testConfig(), 0.95)
	pf.checkExits(105, 2000)
	if pf.orders[1].Reason != models.ReasonExitProfit {
		t.Fatalf("reason = %v, want EXIT_PROFIT", pf.orders[1].Reason)
	}
}

func TestCheckExitsHoldsInsideBand(t *testing.T) {
	pf := newPortfolio(10000)
	pf.openPosition("BTCUSDT", 100, 1000, testConfig(), 0.95)
	pf.checkExits(101, 2000)
	if len(pf.positions) != 1 {
		t.Fatalf("price inside the OCO band must not exit")
	}
}

func TestPortfolioValueMarksOpenPositions(t *testing.T) {
	pf := newPortfolio(10000)
	pf.openPosition("BTCUSDT", 100, 1000, testConfig(), 0.95)
	got := pf.value(map[string]float64{"BTCUSDT": 110})
	// 500 cash + 95 qty * 110
	if math.Abs(got-10950) > 1e-9 {
		t.Fatalf("value = %v, want 10950", got)
	}
	// Missing quote: only cash plus nothing for the position.
	if got := pf.value(map[string]float64{}); math.Abs(got-500) > 1e-9 {
		t.Fatalf("value without quote = %v, want 500", got)
	}
}
