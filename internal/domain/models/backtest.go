package models

import "fmt"

// OrderSide is the closed set of order directions.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// OrderReason is the closed set of reason codes attached to ledger entries.
type OrderReason string

const (
	ReasonEntry      OrderReason = "ENTRY"
	ReasonExitZScore OrderReason = "EXIT_ZSCORE"
	ReasonExitStop   OrderReason = "EXIT_STOP"
	ReasonExitProfit OrderReason = "EXIT_PROFIT"
)

// SignalAction is the closed set of z-score signal classifications.
type SignalAction string

const (
	ActionBuy  SignalAction = "BUY"
	ActionSell SignalAction = "SELL"
	ActionHold SignalAction = "HOLD"
)

// Signal is one classified point of a symbol's rating z-score series.
type Signal struct {
	Timestamp int64        `json:"timestamp"`
	ZScore    float64      `json:"z_score"`
	Action    SignalAction `json:"action"`
}

// Order is an append-only ledger entry. ProfitLoss fields are set on SELL only.
type Order struct {
	Symbol            string      `json:"symbol"`
	Side              OrderSide   `json:"side"`
	Quantity          float64     `json:"quantity"`
	Price             float64     `json:"price"`
	Timestamp         int64       `json:"timestamp"`
	Reason            OrderReason `json:"reason"`
	ProfitLoss        *float64    `json:"profit_loss,omitempty"`
	ProfitLossPercent *float64    `json:"profit_loss_percent,omitempty"`
}

// EquityPoint is one (timestamp, total portfolio value) sample.
type EquityPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// BacktestConfig is the immutable per-run configuration. Windowed runs derive
// child configs with narrowed [StartTime, EndTime] ranges.
type BacktestConfig struct {
	BaseAsset       string  `json:"base_asset"`
	QuoteAsset      string  `json:"quote_asset"`
	ZScoreThreshold float64 `json:"z_score_threshold"`
	MovingAverages  int     `json:"moving_averages"`
	ProfitPercent   float64 `json:"profit_percent"`
	StopLossPercent float64 `json:"stop_loss_percent"`
	StartTime       int64   `json:"start_time"`
	EndTime         int64   `json:"end_time"`
	WindowSize      *int    `json:"window_size,omitempty"`
}

// Symbol returns the traded pair, e.g. "BTC"+"USDT" -> "BTCUSDT".
func (c BacktestConfig) Symbol() string {
	return c.BaseAsset + c.QuoteAsset
}

// WithRange clones the config with a narrowed time range.
func (c BacktestConfig) WithRange(start, end int64) BacktestConfig {
	c.StartTime = start
	c.EndTime = end
	return c
}

// Validate reports the first structural problem with the config.
func (c BacktestConfig) Validate() error {
	if c.BaseAsset == "" || c.QuoteAsset == "" {
		return fmt.Errorf("backtest config: base_asset and quote_asset are required")
	}
	if c.ZScoreThreshold <= 0 {
		return fmt.Errorf("backtest config: z_score_threshold must be positive, got %v", c.ZScoreThreshold)
	}
	if c.MovingAverages <= 0 {
		return fmt.Errorf("backtest config: moving_averages must be positive, got %d", c.MovingAverages)
	}
	if c.ProfitPercent <= 0 || c.StopLossPercent <= 0 {
		return fmt.Errorf("backtest config: profit_percent and stop_loss_percent must be positive")
	}
	if c.EndTime <= c.StartTime {
		return fmt.Errorf("backtest config: end_time %d must be after start_time %d", c.EndTime, c.StartTime)
	}
	if c.WindowSize != nil && *c.WindowSize <= 0 {
		return fmt.Errorf("backtest config: window_size must be positive, got %d", *c.WindowSize)
	}
	return nil
}

// BacktestResult is the analyzer output plus the full order ledger.
// Alpha is reserved and always 0 (no benchmark comparison implemented).
type BacktestResult struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	Alpha            float64 `json:"alpha"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRatio         float64 `json:"win_ratio"`
	TotalTrades      int     `json:"total_trades"`
	ProfitFactor     float64 `json:"profit_factor"`
	AvgTradeDuration float64 `json:"avg_trade_duration"`
	Orders           []Order `json:"orders"`
}
