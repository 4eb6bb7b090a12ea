package backtest

import (
	"context"
	"fmt"
	"sync"

	"GlickoLab/internal/domain/models"
	"GlickoLab/pkg/logger"
)

const (
	defaultWindowMonths = 12
	msPerMonth          = int64(30) * 24 * 60 * 60 * 1000
)

// WindowedEngine slices a long range into half-overlapping windows and runs
// an independent simulation per window on a bounded worker pool.
type WindowedEngine struct {
	engine  *Engine
	workers int
	log     *logger.Logger
}

func NewWindowedEngine(engine *Engine, workers int, log *logger.Logger) *WindowedEngine {
	if workers <= 0 {
		workers = 4
	}
	return &WindowedEngine{engine: engine, workers: workers, log: log}
}

// Run walks windows of WindowSize months (default 12) advancing by half a
// window each step, so consecutive windows overlap 50%. Each window replays
// only the ratings inside its inclusive range; windows with no ratings are
// skipped. Results come back in window order regardless of which worker
// finished first, and the first failing window aborts the rest.
func (w *WindowedEngine) Run(ctx context.Context, cfg models.BacktestConfig, ratings []models.RatingSnapshot) ([]models.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("windowed backtest: %w", err)
	}

	months := defaultWindowMonths
	if cfg.WindowSize != nil {
		months = *cfg.WindowSize
	}
	windowMs := int64(months) * msPerMonth
	stepMs := windowMs / 2

	type window struct {
		cfg     models.BacktestConfig
		ratings []models.RatingSnapshot
	}
	var windows []window
	for start := cfg.StartTime; start+windowMs <= cfg.EndTime; start += stepMs {
		end := start + windowMs
		var slice []models.RatingSnapshot
		for _, r := range ratings {
			if r.Timestamp >= start && r.Timestamp <= end {
				slice = append(slice, r)
			}
		}
		if len(slice) == 0 {
			continue
		}
		windows = append(windows, window{cfg: cfg.WithRange(start, end), ratings: slice})
	}
	if len(windows) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]models.BacktestResult, len(windows))
	errs := make(chan error, len(windows))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := w.engine.Run(windows[idx].cfg, windows[idx].ratings)
				if err != nil {
					errs <- fmt.Errorf("window %d [%d, %d]: %w",
						idx, windows[idx].cfg.StartTime, windows[idx].cfg.EndTime, err)
					cancel()
					return
				}
				results[idx] = res
			}
		}()
	}

feed:
	for idx := range windows {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if w.log != nil {
		w.log.Info("windowed backtest finished",
			logger.String("symbol", cfg.Symbol()),
			logger.Int("windows", len(windows)),
			logger.Int("workers", w.workers),
		)
	}
	return results, nil
}
