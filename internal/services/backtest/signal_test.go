package backtest

import (
	"testing"

	"GlickoLab/internal/domain/models"
)

func snap(symbol string, ts int64, rating float64) models.RatingSnapshot {
	return models.RatingSnapshot{
		Symbol:          symbol,
		Timestamp:       ts,
		Rating:          rating,
		RatingDeviation: 200,
		Volatility:      0.06,
	}
}

func TestGenerateWarmupEmitsNothing(t *testing.T) {
	g := NewSignalGenerator()
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
	}
	signals := g.Generate(ratings, 2, 1.0)
	if got := signals["BTCUSDT"]; len(got) != 0 {
		t.Fatalf("expected no signals during warm-up, got %+v", got)
	}
}

func TestGenerateClassification(t *testing.T) {
	g := NewSignalGenerator()
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
		snap("BTCUSDT", 3000, 1520), // window {1500,1510}: z = 3 -> BUY
		snap("BTCUSDT", 4000, 1400), // window {1510,1520}: z = -23 -> SELL
	}
	signals := g.Generate(ratings, 2, 1.0)["BTCUSDT"]
	if len(signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(signals))
	}
	if signals[0].Action != models.ActionBuy || signals[0].Timestamp != 3000 {
		t.Fatalf("expected BUY@3000, got %+v", signals[0])
	}
	if signals[1].Action != models.ActionSell || signals[1].Timestamp != 4000 {
		t.Fatalf("expected SELL@4000, got %+v", signals[1])
	}
	if signals[0].ZScore != 3 {
		t.Fatalf("expected z=3, got %v", signals[0].ZScore)
	}
}

func TestGenerateThresholdIsExclusive(t *testing.T) {
	g := NewSignalGenerator()
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
		snap("BTCUSDT", 3000, 1520), // z = 3 exactly
	}
	signals := g.Generate(ratings, 2, 3.0)["BTCUSDT"]
	if len(signals) != 1 || signals[0].Action != models.ActionHold {
		t.Fatalf("z equal to the threshold must HOLD, got %+v", signals)
	}
}

func TestGenerateZeroDeviationWindowHolds(t *testing.T) {
	g := NewSignalGenerator()
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1500),
		snap("BTCUSDT", 3000, 1900),
	}
	signals := g.Generate(ratings, 2, 1.0)["BTCUSDT"]
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].ZScore != 0 || signals[0].Action != models.ActionHold {
		t.Fatalf("flat window must yield z=0 HOLD, got %+v", signals[0])
	}
}

func TestGenerateGroupsBySymbol(t *testing.T) {
	g := NewSignalGenerator()
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 1000, 1500),
		snap("ETHUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
		snap("ETHUSDT", 2000, 1490),
		snap("BTCUSDT", 3000, 1520),
		snap("ETHUSDT", 3000, 1480),
	}
	signals := g.Generate(ratings, 2, 1.0)
	if len(signals["BTCUSDT"]) != 1 || len(signals["ETHUSDT"]) != 1 {
		t.Fatalf("expected one signal per symbol, got %+v", signals)
	}
	if signals["BTCUSDT"][0].Action != models.ActionBuy {
		t.Fatalf("rising symbol should BUY, got %+v", signals["BTCUSDT"][0])
	}
	if signals["ETHUSDT"][0].Action != models.ActionSell {
		t.Fatalf("falling symbol should SELL, got %+v", signals["ETHUSDT"][0])
	}
}

func TestGenerateSortsUnorderedHistory(t *testing.T) {
	g := NewSignalGenerator()
	ratings := []models.RatingSnapshot{
		snap("BTCUSDT", 3000, 1520),
		snap("BTCUSDT", 1000, 1500),
		snap("BTCUSDT", 2000, 1510),
	}
	signals := g.Generate(ratings, 2, 1.0)["BTCUSDT"]
	if len(signals) != 1 || signals[0].Timestamp != 3000 || signals[0].Action != models.ActionBuy {
		t.Fatalf("expected BUY@3000 after internal sort, got %+v", signals)
	}
}
