package rating

import (
	"fmt"
	"sort"

	"GlickoLab/internal/domain/models"
	"GlickoLab/internal/services/scoring"
	"GlickoLab/pkg/logger"
)

// Benchmark opponent every candle is rated against: a fixed quote-asset
// baseline with a tight deviation.
const (
	BenchmarkRating = 1500.0
	BenchmarkRD     = 50.0
)

// Engine turns candle streams into per-symbol Glicko-2 rating series.
// Each call is self-contained; players are never carried across calls.
type Engine struct {
	scorer      *scoring.HybridCalculator
	log         *logger.Logger
	benchRating float64
	benchRD     float64
}

type EngineOption func(*Engine)

// WithBenchmark overrides the fixed opponent every candle is rated against.
func WithBenchmark(rating, rd float64) EngineOption {
	return func(e *Engine) {
		if rating > 0 {
			e.benchRating = rating
		}
		if rd > 0 {
			e.benchRD = rd
		}
	}
}

func NewEngine(scorer *scoring.HybridCalculator, log *logger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		scorer:      scorer,
		log:         log,
		benchRating: BenchmarkRating,
		benchRD:     BenchmarkRD,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateRatings replays candles in timestamp order and emits exactly one
// rating snapshot per candle. Candles for different symbols interleave freely;
// each symbol evolves its own player state. Any malformed candle fails the
// whole batch.
func (e *Engine) CalculateRatings(candles []models.Candle) ([]models.RatingSnapshot, error) {
	for i := range candles {
		if err := candles[i].Validate(); err != nil {
			return nil, fmt.Errorf("calculate ratings: %w", err)
		}
	}

	// Stable sort keeps same-timestamp candles in input order.
	sorted := make([]models.Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OpenTime < sorted[j].OpenTime
	})

	players := make(map[string]Player)
	snapshots := make([]models.RatingSnapshot, 0, len(sorted))

	for _, c := range sorted {
		player, ok := players[c.Symbol]
		if !ok {
			player = NewPlayer(c.Symbol)
		}

		score := e.scorer.Score(c)
		updated := UpdateRating(player, e.benchRating, e.benchRD, score)
		players[c.Symbol] = updated

		snapshots = append(snapshots, models.RatingSnapshot{
			Symbol:           c.Symbol,
			Timestamp:        c.OpenTime,
			Rating:           updated.Rating,
			RatingDeviation:  updated.RatingDeviation,
			Volatility:       updated.Volatility,
			PerformanceScore: score,
		})
	}

	if e.log != nil {
		e.log.Debug("calculated ratings",
			logger.Int("candles", len(sorted)),
			logger.Int("symbols", len(players)),
		)
	}

	return snapshots, nil
}
