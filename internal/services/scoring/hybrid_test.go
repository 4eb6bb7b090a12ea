package scoring

import (
	"math"
	"testing"

	"GlickoLab/internal/domain/models"
)

func candle(open, close, vol, takerBuy float64) models.Candle {
	return models.Candle{
		Symbol:                  "BTCUSDT",
		OpenTime:                1000,
		CloseTime:               2000,
		Open:                    open,
		High:                    math.Max(open, close),
		Low:                     math.Min(open, close),
		Close:                   close,
		Volume:                  vol,
		TakerBuyBaseAssetVolume: takerBuy,
	}
}

func TestScoreStrongGainSaturates(t *testing.T) {
	h := NewHybridCalculator()
	// +2% move: 0.5 + 0.02*50 = 1.5, clamped to 1.
	got := h.Score(candle(100, 102, 10, 6))
	if got != 1.0 {
		t.Fatalf("expected saturated score 1.0, got %v", got)
	}
}

func TestScoreStrongLossSaturates(t *testing.T) {
	h := NewHybridCalculator()
	got := h.Score(candle(100, 98, 10, 4))
	if got != 0.0 {
		t.Fatalf("expected saturated score 0.0, got %v", got)
	}
}

func TestScoreModerateGain(t *testing.T) {
	h := NewHybridCalculator()
	// +0.5% move: 0.5 + 0.005*50 = 0.75.
	got := h.Score(candle(100, 100.5, 10, 6))
	if math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("expected 0.75, got %v", got)
	}
}

func TestScoreFlatIsNeutral(t *testing.T) {
	h := NewHybridCalculator()
	// +0.05% is below the flat threshold.
	got := h.Score(candle(100, 100.05, 10, 5))
	if got != 0.5 {
		t.Fatalf("expected neutral 0.5, got %v", got)
	}
	if got := h.Score(candle(100, 100, 10, 5)); got != 0.5 {
		t.Fatalf("expected neutral 0.5 for unchanged price, got %v", got)
	}
}

func TestScoreThresholdBoundary(t *testing.T) {
	h := NewHybridCalculator()
	// Exactly 0.1% is NOT flat: 0.5 + 0.001*50 = 0.55.
	got := h.Score(candle(100, 100.1, 10, 5))
	if math.Abs(got-0.55) > 1e-9 {
		t.Fatalf("expected 0.55 at the flat boundary, got %v", got)
	}
}

func TestBreakdownFlags(t *testing.T) {
	h := NewHybridCalculator()
	b := h.Breakdown(candle(100, 101, 10, 7))
	if !b.PriceUp || b.PriceUnchanged {
		t.Fatalf("expected price-up flags, got %+v", b)
	}
	if !b.TakerBuyDominant {
		t.Fatalf("expected taker buy dominant with 7 of 10, got %+v", b)
	}

	b = h.Breakdown(candle(100, 99, 10, 3))
	if b.PriceUp || b.TakerBuyDominant {
		t.Fatalf("expected down flags, got %+v", b)
	}
}

func TestBreakdownPriceUnchangedIsAbsolute(t *testing.T) {
	h := NewHybridCalculator()
	// The unchanged flag compares the raw price delta, not the ratio. A 0.0005
	// absolute move on a 1.0 open is "unchanged" even though the relative
	// change is 0.05%.
	b := h.Breakdown(candle(1.0, 1.0005, 10, 5))
	if !b.PriceUnchanged {
		t.Fatalf("expected unchanged for sub-threshold absolute delta, got %+v", b)
	}
	// On a large open the same relative move is a large absolute delta.
	b = h.Breakdown(candle(10000, 10000.05, 10, 5))
	if b.PriceUnchanged {
		t.Fatalf("expected changed for 0.05 absolute delta, got %+v", b)
	}
	if b.Score != 0.5 {
		t.Fatalf("score still neutral below relative threshold, got %v", b.Score)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		score float64
		want  Confidence
	}{
		{0.5, ConfidenceNeutral},
		{0.55, ConfidenceNeutral},
		{0.41, ConfidenceNeutral},
		{0.65, ConfidenceLow},
		{0.3, ConfidenceLow},
		{0.75, ConfidenceHigh},
		{0.0, ConfidenceHigh},
		{1.0, ConfidenceHigh},
	}
	for _, c := range cases {
		if got := Classify(c.score); got != c.want {
			t.Fatalf("Classify(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}
