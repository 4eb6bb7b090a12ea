package rating

import (
	"testing"

	"GlickoLab/internal/domain/models"
	"GlickoLab/internal/services/scoring"
)

func newTestEngine() *Engine {
	return NewEngine(scoring.NewHybridCalculator(), nil)
}

func mkCandle(symbol string, openTime int64, open, close float64) models.Candle {
	return models.Candle{
		Symbol:                  symbol,
		OpenTime:                openTime,
		CloseTime:               openTime + 3_600_000,
		Open:                    open,
		High:                    open * 1.05,
		Low:                     open * 0.95,
		Close:                   close,
		Volume:                  100,
		TakerBuyBaseAssetVolume: 60,
	}
}

func TestCalculateRatingsEmpty(t *testing.T) {
	snaps, err := newTestEngine().CalculateRatings(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("expected no snapshots, got %d", len(snaps))
	}
}

func TestCalculateRatingsSingleWin(t *testing.T) {
	snaps, err := newTestEngine().CalculateRatings([]models.Candle{
		mkCandle("BTCUSDT", 1640995200000, 47000, 47500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(snaps))
	}
	s := snaps[0]
	if s.Symbol != "BTCUSDT" || s.Timestamp != 1640995200000 {
		t.Fatalf("snapshot identity wrong: %+v", s)
	}
	if s.PerformanceScore != 1.0 {
		t.Fatalf("+1.06%% move should saturate the score, got %v", s.PerformanceScore)
	}
	if s.Rating <= DefaultRating {
		t.Fatalf("rating should exceed the default after a win, got %v", s.Rating)
	}
}

func TestCalculateRatingsOnePerCandle(t *testing.T) {
	candles := []models.Candle{
		mkCandle("BTCUSDT", 3000, 100, 101),
		mkCandle("ETHUSDT", 1000, 50, 49),
		mkCandle("BTCUSDT", 2000, 99, 100),
		mkCandle("ETHUSDT", 4000, 49, 49),
	}
	snaps, err := newTestEngine().CalculateRatings(candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != len(candles) {
		t.Fatalf("expected %d snapshots, got %d", len(candles), len(snaps))
	}
	// Output follows global timestamp order, not input order.
	for i := 1; i < len(snaps); i++ {
		if snaps[i].Timestamp < snaps[i-1].Timestamp {
			t.Fatalf("snapshots out of order at %d: %+v", i, snaps)
		}
	}
}

func TestCalculateRatingsSymbolsEvolveIndependently(t *testing.T) {
	candles := []models.Candle{
		mkCandle("BTCUSDT", 1000, 100, 102), // win
		mkCandle("ETHUSDT", 1000, 100, 98),  // loss
		mkCandle("BTCUSDT", 2000, 102, 104), // win
		mkCandle("ETHUSDT", 2000, 98, 96),   // loss
	}
	snaps, err := newTestEngine().CalculateRatings(candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var btc, eth []models.RatingSnapshot
	for _, s := range snaps {
		switch s.Symbol {
		case "BTCUSDT":
			btc = append(btc, s)
		case "ETHUSDT":
			eth = append(eth, s)
		}
	}
	if len(btc) != 2 || len(eth) != 2 {
		t.Fatalf("per-symbol split wrong: %d/%d", len(btc), len(eth))
	}
	if !(btc[1].Rating > btc[0].Rating && btc[0].Rating > DefaultRating) {
		t.Fatalf("winner should climb: %v then %v", btc[0].Rating, btc[1].Rating)
	}
	if !(eth[1].Rating < eth[0].Rating && eth[0].Rating < DefaultRating) {
		t.Fatalf("loser should sink: %v then %v", eth[0].Rating, eth[1].Rating)
	}
}

func TestCalculateRatingsInputOrderIrrelevant(t *testing.T) {
	a := []models.Candle{
		mkCandle("BTCUSDT", 1000, 100, 101),
		mkCandle("BTCUSDT", 2000, 101, 100),
		mkCandle("BTCUSDT", 3000, 100, 103),
	}
	b := []models.Candle{a[2], a[0], a[1]}

	sa, err := newTestEngine().CalculateRatings(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sb, err := newTestEngine().CalculateRatings(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("snapshot %d differs across input orders: %+v vs %+v", i, sa[i], sb[i])
		}
	}
}

func TestCalculateRatingsRejectsMalformedCandle(t *testing.T) {
	bad := mkCandle("BTCUSDT", 1000, 100, 101)
	bad.Open = 0

	if _, err := newTestEngine().CalculateRatings([]models.Candle{bad}); err == nil {
		t.Fatalf("expected error for non-positive open price")
	}

	bad = mkCandle("", 1000, 100, 101)
	if _, err := newTestEngine().CalculateRatings([]models.Candle{bad}); err == nil {
		t.Fatalf("expected error for empty symbol")
	}

	bad = mkCandle("BTCUSDT", 1000, 100, 101)
	bad.CloseTime = bad.OpenTime
	if _, err := newTestEngine().CalculateRatings([]models.Candle{bad}); err == nil {
		t.Fatalf("expected error for close_time <= open_time")
	}
}

func TestCalculateRatingsDoesNotReorderInput(t *testing.T) {
	candles := []models.Candle{
		mkCandle("BTCUSDT", 3000, 100, 101),
		mkCandle("BTCUSDT", 1000, 100, 101),
	}
	if _, err := newTestEngine().CalculateRatings(candles); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candles[0].OpenTime != 3000 {
		t.Fatalf("caller slice was reordered")
	}
}
