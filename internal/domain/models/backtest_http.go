package models

// Requests for the ratings/backtest HTTP endpoints. Defined in domain for
// consistency and reuse.

type CalculateRatingsRequest struct {
	Candles []Candle `json:"candles" validate:"required,min=1"`
	Publish bool     `json:"publish" default:"false"`
}

type BacktestRequest struct {
	Config  BacktestConfig   `json:"config" validate:"required"`
	Ratings []RatingSnapshot `json:"ratings" validate:"required,min=1"`
}

type WindowedBacktestRequest struct {
	Config  BacktestConfig   `json:"config" validate:"required"`
	Ratings []RatingSnapshot `json:"ratings" validate:"required,min=1"`
	Async   bool             `json:"async" default:"false"`
}

// StoredRatingsRequest resolves ratings from candles stored for the symbol
// pair instead of an inline snapshot list. Ratings are recomputed fresh per
// run; nothing derived is read back.
type StoredRatingsRequest struct {
	Config BacktestConfig `json:"config" validate:"required"`
}
