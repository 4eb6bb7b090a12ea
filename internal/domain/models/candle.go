package models

import "fmt"

// Candle is an immutable OHLCV input record with the taker-volume split.
// Timestamps are Unix milliseconds.
type Candle struct {
	Symbol                   string  `json:"symbol"`
	OpenTime                 int64   `json:"open_time"`
	CloseTime                int64   `json:"close_time"`
	Open                     float64 `json:"open"`
	High                     float64 `json:"high"`
	Low                      float64 `json:"low"`
	Close                    float64 `json:"close"`
	Volume                   float64 `json:"volume"`
	QuoteAssetVolume         float64 `json:"quote_asset_volume"`
	NumberOfTrades           uint32  `json:"number_of_trades"`
	TakerBuyBaseAssetVolume  float64 `json:"taker_buy_base_asset_volume"`
	TakerBuyQuoteAssetVolume float64 `json:"taker_buy_quote_asset_volume"`
}

// Validate reports the first structural problem with the record.
// Degenerate statistics downstream are handled silently; a candle that cannot
// be scored at all is a hard input error.
func (c Candle) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("candle: symbol is required")
	}
	if c.CloseTime <= c.OpenTime {
		return fmt.Errorf("candle %s: close_time %d must be after open_time %d", c.Symbol, c.CloseTime, c.OpenTime)
	}
	if c.Open <= 0 {
		return fmt.Errorf("candle %s@%d: open price must be positive, got %v", c.Symbol, c.OpenTime, c.Open)
	}
	if c.Volume < 0 || c.TakerBuyBaseAssetVolume < 0 {
		return fmt.Errorf("candle %s@%d: negative volume", c.Symbol, c.OpenTime)
	}
	return nil
}

// TakerSellVolume derives the taker sell side from the total/buy split.
func (c Candle) TakerSellVolume() float64 {
	return c.Volume - c.TakerBuyBaseAssetVolume
}
