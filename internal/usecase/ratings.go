package usecase

import (
	"context"
	"fmt"
	"time"

	"GlickoLab/internal/domain/models"
	domrepo "GlickoLab/internal/domain/repository"
	"GlickoLab/internal/services/rating"
	applogger "GlickoLab/pkg/logger"
)

// RatingsUseCase computes Glicko-2 rating series and optionally publishes
// them downstream.
type RatingsUseCase struct {
	engine  *rating.Engine
	store   domrepo.CandleStore
	pub     domrepo.RatingPublisher
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewRatingsUseCase(
	engine *rating.Engine,
	store domrepo.CandleStore,
	pub domrepo.RatingPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *RatingsUseCase {
	return &RatingsUseCase{engine: engine, store: store, pub: pub, metrics: metrics, l: l}
}

// Calculate replays the given candles into rating snapshots. With publish set,
// the full batch also goes out on the rating topic; a publish failure fails
// the call even though the ratings were computed.
func (uc *RatingsUseCase) Calculate(ctx context.Context, candles []models.Candle, publish bool) ([]models.RatingSnapshot, error) {
	start := time.Now()
	snaps, err := uc.engine.CalculateRatings(candles)
	if err != nil {
		uc.metrics.RecordError("calculate_ratings")
		return nil, err
	}
	uc.metrics.RecordLatency("calculate_ratings", time.Since(start).Seconds())

	for i := range snaps {
		uc.metrics.RecordRating(snaps[i].Symbol, snaps[i].Rating)
	}

	if publish && uc.pub != nil && len(snaps) > 0 {
		if err := uc.pub.PublishBatch(ctx, snaps); err != nil {
			uc.metrics.RecordError("publish_ratings")
			return nil, fmt.Errorf("publish ratings: %w", err)
		}
		uc.metrics.RecordMessageSent("kafka", snaps[0].Symbol)
	}
	return snaps, nil
}

// CalculateFromStore loads the symbol's candles from storage and computes
// their rating series. Used when callers supply only a pair and a range.
func (uc *RatingsUseCase) CalculateFromStore(ctx context.Context, symbol string, from, to int64) ([]models.RatingSnapshot, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if to <= from {
		return nil, fmt.Errorf("to must be after from")
	}
	if uc.store == nil {
		return nil, fmt.Errorf("no candle store configured")
	}
	candles, err := uc.store.Query(ctx, symbol, from, to, 0)
	if err != nil {
		uc.metrics.RecordError("query_candles")
		return nil, fmt.Errorf("load candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles stored for %s in [%d, %d]", symbol, from, to)
	}
	if uc.l != nil {
		uc.l.Debug("calculating ratings from store",
			applogger.String("symbol", symbol),
			applogger.Int("candles", len(candles)),
		)
	}
	return uc.Calculate(ctx, candles, false)
}
