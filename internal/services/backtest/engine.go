package backtest

import (
	"fmt"
	"sort"

	"GlickoLab/internal/domain/models"
	"GlickoLab/pkg/logger"
)

// Baseline mapping from rating points to a synthetic price: the 1500 default
// marks par at 100.
const syntheticParPrice = 100.0

// Engine runs rating-driven trading simulations. Each Run is self-contained
// and deterministic; the engine itself is safe for concurrent use.
type Engine struct {
	signals    *SignalGenerator
	log        *logger.Logger
	cash       float64
	allocation float64
}

type EngineOption func(*Engine)

// WithFunds overrides the starting cash and the per-entry allocation fraction.
func WithFunds(cash, allocation float64) EngineOption {
	return func(e *Engine) {
		if cash > 0 {
			e.cash = cash
		}
		if allocation > 0 && allocation <= 1 {
			e.allocation = allocation
		}
	}
}

func NewEngine(signals *SignalGenerator, log *logger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		signals:    signals,
		log:        log,
		cash:       initialCash,
		allocation: allocationPercent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run simulates the configured pair over the rating series and returns the
// summary metrics plus the full order ledger. The traded price is synthesized
// from the rating itself; signal and price ticks are joined on exact
// timestamps and unmatched ticks on either side are skipped.
func (e *Engine) Run(cfg models.BacktestConfig, ratings []models.RatingSnapshot) (models.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return models.BacktestResult{}, fmt.Errorf("run backtest: %w", err)
	}

	symbol := cfg.Symbol()
	signals := e.signals.Generate(ratings, cfg.MovingAverages, cfg.ZScoreThreshold)[symbol]
	prices := syntheticPrices(ratings, symbol)

	pf := newPortfolio(e.cash)

	si, pi := 0, 0
	for si < len(signals) && pi < len(prices) {
		sig := signals[si]
		tick := prices[pi]

		if sig.Timestamp < tick.ts {
			si++
			continue
		}
		if tick.ts < sig.Timestamp {
			pi++
			continue
		}

		switch sig.Action {
		case models.ActionBuy:
			pf.openPosition(symbol, tick.price, sig.Timestamp, cfg, e.allocation)
		case models.ActionSell:
			pf.closePosition(symbol, tick.price, sig.Timestamp, models.ReasonExitZScore)
		}

		pf.checkExits(tick.price, sig.Timestamp)
		pf.recordEquity(sig.Timestamp, map[string]float64{symbol: tick.price})

		si++
		pi++
	}

	res := analyzePerformance(pf.equityCurve, pf.orders, e.cash, cfg.StartTime, cfg.EndTime)
	res.Orders = pf.orders

	if e.log != nil {
		e.log.Debug("backtest finished",
			logger.String("symbol", symbol),
			logger.Int("signals", len(signals)),
			logger.Int("trades", res.TotalTrades),
			logger.Float64("total_return", res.TotalReturn),
		)
	}
	return res, nil
}

type pricePoint struct {
	ts    int64
	price float64
}

// syntheticPrices derives a price series for the symbol from its ratings,
// scaled so the default rating trades at par.
func syntheticPrices(ratings []models.RatingSnapshot, symbol string) []pricePoint {
	var prices []pricePoint
	for _, r := range ratings {
		if r.Symbol != symbol {
			continue
		}
		prices = append(prices, pricePoint{
			ts:    r.Timestamp,
			price: syntheticParPrice * (r.Rating / 1500.0),
		})
	}
	sort.SliceStable(prices, func(i, j int) bool { return prices[i].ts < prices[j].ts })
	return prices
}
