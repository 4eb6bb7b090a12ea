package backtest

import (
	"sort"

	"GlickoLab/internal/domain/models"
	"GlickoLab/internal/services/scoring"
)

// SignalGenerator classifies rating series into BUY/SELL/HOLD signals by
// z-scoring each rating against its trailing window.
type SignalGenerator struct{}

func NewSignalGenerator() *SignalGenerator {
	return &SignalGenerator{}
}

// Generate produces per-symbol signal series. For each symbol the ratings are
// ordered by timestamp and, starting at index period, every rating is scored
// against the period ratings strictly before it (the current value is not
// part of its own window). Symbols with period or fewer ratings contribute no
// signals. Warm-up points emit nothing rather than a placeholder HOLD.
func (s *SignalGenerator) Generate(ratings []models.RatingSnapshot, period int, threshold float64) map[string][]models.Signal {
	type point struct {
		ts     int64
		rating float64
	}
	bySymbol := make(map[string][]point)
	for _, r := range ratings {
		bySymbol[r.Symbol] = append(bySymbol[r.Symbol], point{ts: r.Timestamp, rating: r.Rating})
	}

	signals := make(map[string][]models.Signal, len(bySymbol))
	for symbol, history := range bySymbol {
		sort.SliceStable(history, func(i, j int) bool { return history[i].ts < history[j].ts })

		series := make([]models.Signal, 0, max(0, len(history)-period))
		window := make([]float64, 0, period)
		for i := period; i < len(history); i++ {
			window = window[:0]
			for _, p := range history[i-period : i] {
				window = append(window, p.rating)
			}

			z := scoring.ZScore(history[i].rating, window)
			action := models.ActionHold
			switch {
			case z > threshold:
				action = models.ActionBuy
			case z < -threshold:
				action = models.ActionSell
			}

			series = append(series, models.Signal{
				Timestamp: history[i].ts,
				ZScore:    z,
				Action:    action,
			})
		}
		signals[symbol] = series
	}

	return signals
}
