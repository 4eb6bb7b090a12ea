package usecase

import (
	"context"
	"time"

	"GlickoLab/internal/domain/models"
	"GlickoLab/internal/service/metrics"
	"GlickoLab/internal/services/backtest"
	pkgcache "GlickoLab/pkg/cache"
	applogger "GlickoLab/pkg/logger"
	"GlickoLab/pkg/queue"
)

// WindowedBacktestJobType is the queue message type for async window sweeps.
const WindowedBacktestJobType = "backtest.windowed"

// WindowedBacktestPayload is the queued job body.
type WindowedBacktestPayload struct {
	Config  models.BacktestConfig   `json:"config"`
	Ratings []models.RatingSnapshot `json:"ratings"`
}

// WindowedBacktestJob consumes queued sweep requests, runs them, and parks
// the results in the shared cache for pickup.
type WindowedBacktestJob struct {
	windowed *backtest.WindowedEngine
	cache    pkgcache.Service
	l        *applogger.Logger
}

func NewWindowedBacktestJob(windowed *backtest.WindowedEngine, cacheSvc pkgcache.Service, l *applogger.Logger) *WindowedBacktestJob {
	metrics.Register()
	return &WindowedBacktestJob{windowed: windowed, cache: cacheSvc, l: l}
}

func (j *WindowedBacktestJob) Name() string { return "windowed-backtest" }

func (j *WindowedBacktestJob) Type() string { return WindowedBacktestJobType }

func (j *WindowedBacktestJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[WindowedBacktestPayload](payload)
	if err != nil {
		metrics.JobRuns.WithLabelValues(j.Name(), "invalid_payload").Inc()
		return err
	}

	start := time.Now()
	results, err := j.windowed.Run(ctx, p.Config, p.Ratings)
	metrics.JobDuration.WithLabelValues(j.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.JobRuns.WithLabelValues(j.Name(), "error").Inc()
		if j.l != nil {
			j.l.Error("windowed backtest job failed",
				applogger.String("symbol", p.Config.Symbol()),
				applogger.Error(err),
			)
		}
		return err
	}
	metrics.JobRuns.WithLabelValues(j.Name(), "ok").Inc()

	if j.cache != nil {
		key := windowedCacheKey(p.Config, p.Ratings)
		if err := j.cache.Set(ctx, key, results, windowedCacheTTL); err != nil && j.l != nil {
			j.l.Warn("windowed backtest job cache store failed", applogger.Error(err))
		}
	}

	if j.l != nil {
		j.l.Info("windowed backtest job finished",
			applogger.String("symbol", p.Config.Symbol()),
			applogger.Int("windows", len(results)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

var _ queue.Job = (*WindowedBacktestJob)(nil)
