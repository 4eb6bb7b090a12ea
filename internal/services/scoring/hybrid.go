package scoring

import (
	"math"

	"GlickoLab/internal/domain/models"
)

const (
	// Price moves below this relative threshold count as flat.
	flatChangeThreshold = 0.001
	// Relative price change is scaled so that +-1% maps to the 0..1 extremes.
	changeScale = 50.0
)

// Confidence classifies how far a performance score sits from neutral.
type Confidence string

const (
	ConfidenceNeutral Confidence = "NEUTRAL"
	ConfidenceLow     Confidence = "LOW"
	ConfidenceHigh    Confidence = "HIGH"
)

// ScoreBreakdown carries the score plus the directional flags derived from a
// single candle. The flags are informational; only Score feeds the rating
// update.
type ScoreBreakdown struct {
	Score            float64    `json:"score"`
	Confidence       Confidence `json:"confidence"`
	PriceUp          bool       `json:"price_up"`
	PriceUnchanged   bool       `json:"price_unchanged"`
	TakerBuyDominant bool       `json:"taker_buy_dominant"`
	PriceChangeRatio float64    `json:"price_change_ratio"`
}

// HybridCalculator maps candles onto [0,1] performance scores. Stateless and
// safe for concurrent use.
type HybridCalculator struct{}

func NewHybridCalculator() *HybridCalculator {
	return &HybridCalculator{}
}

// Score computes the continuous performance score for one candle.
// 0.5 is neutral, 0 is max loss, 1 is max win. The candle must have passed
// Validate; a zero open would divide here.
func (h *HybridCalculator) Score(c models.Candle) float64 {
	change := (c.Close - c.Open) / c.Open
	if math.Abs(change) < flatChangeThreshold {
		return 0.5
	}
	return clamp(0.5+change*changeScale, 0, 1)
}

// Breakdown computes the score together with the derived flags and the
// confidence class.
func (h *HybridCalculator) Breakdown(c models.Candle) ScoreBreakdown {
	change := (c.Close - c.Open) / c.Open
	score := h.Score(c)
	return ScoreBreakdown{
		Score:            score,
		Confidence:       Classify(score),
		PriceUp:          c.Close > c.Open,
		PriceUnchanged:   math.Abs(c.Close-c.Open) < flatChangeThreshold,
		TakerBuyDominant: c.TakerBuyBaseAssetVolume > c.TakerSellVolume(),
		PriceChangeRatio: change,
	}
}

// Classify buckets a score by its distance from the neutral 0.5.
func Classify(score float64) Confidence {
	d := math.Abs(score - 0.5)
	switch {
	case d < 0.1:
		return ConfidenceNeutral
	case d < 0.25:
		return ConfidenceLow
	default:
		return ConfidenceHigh
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
