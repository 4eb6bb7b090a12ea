package backtest

import (
	"GlickoLab/internal/domain/models"
)

const (
	initialCash       = 10000.0
	allocationPercent = 0.95
)

// position is an open long with its OCO exit levels fixed at entry.
type position struct {
	symbol          string
	quantity        float64
	entryPrice      float64
	entryTime       int64
	stopLossPrice   float64
	takeProfitPrice float64
}

// portfolio is the single-strategy simulation state: cash, open positions,
// the equity curve, and the append-only order ledger.
type portfolio struct {
	cash        float64
	positions   map[string]*position
	equityCurve []models.EquityPoint
	orders      []models.Order
}

func newPortfolio(cash float64) *portfolio {
	return &portfolio{
		cash:        cash,
		positions:   make(map[string]*position),
		equityCurve: []models.EquityPoint{{Timestamp: 0, Value: cash}},
	}
}

// value marks all open positions at the given prices. Symbols without a
// quote contribute nothing beyond cash.
func (p *portfolio) value(prices map[string]float64) float64 {
	total := p.cash
	for symbol, pos := range p.positions {
		if price, ok := prices[symbol]; ok {
			total += pos.quantity * price
		}
	}
	return total
}

// openPosition buys with a fixed fraction of current cash. Returns false when
// a position already exists for the symbol or cash cannot cover the buy;
// both are silent rejections, not errors.
func (p *portfolio) openPosition(symbol string, price float64, timestamp int64, cfg models.BacktestConfig, allocation float64) bool {
	if _, exists := p.positions[symbol]; exists {
		return false
	}

	quantity := p.cash * allocation / price
	if quantity*price > p.cash {
		return false
	}

	p.positions[symbol] = &position{
		symbol:          symbol,
		quantity:        quantity,
		entryPrice:      price,
		entryTime:       timestamp,
		stopLossPrice:   price * (1.0 - cfg.StopLossPercent/100.0),
		takeProfitPrice: price * (1.0 + cfg.ProfitPercent/100.0),
	}
	p.cash -= quantity * price

	p.orders = append(p.orders, models.Order{
		Symbol:    symbol,
		Side:      models.SideBuy,
		Quantity:  quantity,
		Price:     price,
		Timestamp: timestamp,
		Reason:    models.ReasonEntry,
	})
	return true
}

// closePosition liquidates the symbol's position at the given price, booking
// realized P&L on the SELL order. No-op when no position is open.
func (p *portfolio) closePosition(symbol string, price float64, timestamp int64, reason models.OrderReason) bool {
	pos, ok := p.positions[symbol]
	if !ok {
		return false
	}
	delete(p.positions, symbol)

	proceeds := pos.quantity * price
	p.cash += proceeds

	profitLoss := proceeds - pos.quantity*pos.entryPrice
	profitLossPercent := (price - pos.entryPrice) / pos.entryPrice * 100.0

	p.orders = append(p.orders, models.Order{
		Symbol:            symbol,
		Side:              models.SideSell,
		Quantity:          pos.quantity,
		Price:             price,
		Timestamp:         timestamp,
		Reason:            reason,
		ProfitLoss:        &profitLoss,
		ProfitLossPercent: &profitLossPercent,
	})
	return true
}

// checkExits fires OCO exits for positions breaching their levels at the
// given price. Stop-loss takes priority over take-profit.
func (p *portfolio) checkExits(price float64, timestamp int64) {
	var hit []string
	for symbol, pos := range p.positions {
		if price <= pos.stopLossPrice || price >= pos.takeProfitPrice {
			hit = append(hit, symbol)
		}
	}
	for _, symbol := range hit {
		pos := p.positions[symbol]
		reason := models.ReasonExitProfit
		if price <= pos.stopLossPrice {
			reason = models.ReasonExitStop
		}
		p.closePosition(symbol, price, timestamp, reason)
	}
}

func (p *portfolio) recordEquity(timestamp int64, prices map[string]float64) {
	p.equityCurve = append(p.equityCurve, models.EquityPoint{
		Timestamp: timestamp,
		Value:     p.value(prices),
	})
}
