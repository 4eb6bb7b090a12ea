package models

// RatingSnapshot is one post-update Glicko-2 observation for a symbol.
// Exactly one snapshot is produced per candle, in non-decreasing timestamp
// order per symbol; never mutated after creation.
type RatingSnapshot struct {
	Symbol           string  `json:"symbol"`
	Timestamp        int64   `json:"timestamp"`
	Rating           float64 `json:"rating"`
	RatingDeviation  float64 `json:"rating_deviation"`
	Volatility       float64 `json:"volatility"`
	PerformanceScore float64 `json:"performance_score"`
}
