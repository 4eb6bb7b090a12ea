package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"GlickoLab/internal/domain/models"
	domrepo "GlickoLab/internal/domain/repository"
	"GlickoLab/internal/service/ratelimit"
	"GlickoLab/internal/services/backtest"
	pkgcache "GlickoLab/pkg/cache"
	applogger "GlickoLab/pkg/logger"
	"GlickoLab/pkg/queue"
)

const (
	windowedCacheTTL      = 15 * time.Minute
	windowedLockTTL       = 5 * time.Minute
	windowedRatePerSec    = 0.5
	windowedBurstCapacity = 4.0
)

// BacktestUseCase runs single and windowed simulations. Windowed results are
// cached, duplicate concurrent sweeps are collapsed with a distributed lock,
// and fresh runs are throttled per symbol by a token bucket.
type BacktestUseCase struct {
	engine   *backtest.Engine
	windowed *backtest.WindowedEngine
	ratings  *RatingsUseCase
	cache    pkgcache.Service
	limiter  *ratelimit.Limiter
	jobs     queue.QueueService
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewBacktestUseCase(
	engine *backtest.Engine,
	windowed *backtest.WindowedEngine,
	ratings *RatingsUseCase,
	cacheSvc pkgcache.Service,
	limiter *ratelimit.Limiter,
	jobs queue.QueueService,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *BacktestUseCase {
	return &BacktestUseCase{
		engine:   engine,
		windowed: windowed,
		ratings:  ratings,
		cache:    cacheSvc,
		limiter:  limiter,
		jobs:     jobs,
		metrics:  metrics,
		l:        l,
	}
}

// Run executes one simulation over the supplied rating series.
func (uc *BacktestUseCase) Run(ctx context.Context, cfg models.BacktestConfig, ratings []models.RatingSnapshot) (models.BacktestResult, error) {
	start := time.Now()
	res, err := uc.engine.Run(cfg, ratings)
	if err != nil {
		uc.metrics.RecordError("backtest_run")
		return models.BacktestResult{}, err
	}
	uc.metrics.RecordLatency("backtest_run", time.Since(start).Seconds())
	return res, nil
}

// RunFromStore resolves the rating series from stored candles for the
// configured pair, then runs the simulation.
func (uc *BacktestUseCase) RunFromStore(ctx context.Context, cfg models.BacktestConfig) (models.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return models.BacktestResult{}, err
	}
	ratings, err := uc.ratings.CalculateFromStore(ctx, cfg.Symbol(), cfg.StartTime, cfg.EndTime)
	if err != nil {
		return models.BacktestResult{}, err
	}
	return uc.Run(ctx, cfg, ratings)
}

// RunWindowed executes the half-overlapping window sweep. Identical requests
// within the cache TTL are served from cache.
func (uc *BacktestUseCase) RunWindowed(ctx context.Context, cfg models.BacktestConfig, ratings []models.RatingSnapshot) ([]models.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key := windowedCacheKey(cfg, ratings)
	if cached, ok := uc.cachedResults(ctx, key); ok {
		if uc.l != nil {
			uc.l.Debug("windowed backtest cache hit", applogger.String("key", key))
		}
		return cached, nil
	}

	if uc.limiter != nil && !uc.limiter.Allow("windowed:"+cfg.Symbol(), windowedBurstCapacity, windowedRatePerSec) {
		uc.metrics.RecordError("backtest_rate_limited")
		return nil, fmt.Errorf("windowed backtest rate limited for %s", cfg.Symbol())
	}

	// Collapse duplicate sweeps racing on the same key: the loser re-reads
	// the cache and recomputes only if the winner's results never landed.
	if uc.cache != nil {
		locked, err := uc.cache.TryLock(ctx, key+":lock", windowedLockTTL)
		if err == nil && locked {
			defer func() { _ = uc.cache.Unlock(ctx, key+":lock") }()
		} else if err == nil && !locked {
			if cached, ok := uc.cachedResults(ctx, key); ok {
				return cached, nil
			}
		}
	}

	start := time.Now()
	results, err := uc.windowed.Run(ctx, cfg, ratings)
	if err != nil {
		uc.metrics.RecordError("backtest_windowed")
		return nil, err
	}
	uc.metrics.RecordLatency("backtest_windowed", time.Since(start).Seconds())

	if uc.cache != nil && len(results) > 0 {
		if err := uc.cache.Set(ctx, key, results, windowedCacheTTL); err != nil && uc.l != nil {
			uc.l.Warn("windowed backtest cache store failed", applogger.Error(err))
		}
	}
	return results, nil
}

// EnqueueWindowed schedules the sweep on the job queue and returns the cache
// key the finished results will appear under.
func (uc *BacktestUseCase) EnqueueWindowed(ctx context.Context, cfg models.BacktestConfig, ratings []models.RatingSnapshot) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if uc.jobs == nil {
		return "", fmt.Errorf("job queue not configured")
	}
	payload := WindowedBacktestPayload{Config: cfg, Ratings: ratings}
	if err := uc.jobs.PublishMessage(ctx, WindowedBacktestJobType, payload); err != nil {
		uc.metrics.RecordError("backtest_enqueue")
		return "", fmt.Errorf("enqueue windowed backtest: %w", err)
	}
	return windowedCacheKey(cfg, ratings), nil
}

// FetchWindowed returns previously computed windowed results by cache key.
func (uc *BacktestUseCase) FetchWindowed(ctx context.Context, key string) ([]models.BacktestResult, bool, error) {
	if uc.cache == nil {
		return nil, false, fmt.Errorf("cache not configured")
	}
	var results []models.BacktestResult
	if err := uc.cache.Get(ctx, key, &results); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch windowed results: %w", err)
	}
	return results, true, nil
}

func (uc *BacktestUseCase) cachedResults(ctx context.Context, key string) ([]models.BacktestResult, bool) {
	if uc.cache == nil {
		return nil, false
	}
	var results []models.BacktestResult
	if err := uc.cache.Get(ctx, key, &results); err != nil {
		return nil, false
	}
	return results, true
}

// windowedCacheKey fingerprints the run inputs. The rating series is part of
// the key, so the same config over different ratings never collides.
func windowedCacheKey(cfg models.BacktestConfig, ratings []models.RatingSnapshot) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(cfg)
	_ = enc.Encode(ratings)
	return "backtest:windowed:" + hex.EncodeToString(h.Sum(nil)[:16])
}
