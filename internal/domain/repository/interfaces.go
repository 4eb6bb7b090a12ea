package repository

import (
	"context"

	"GlickoLab/internal/domain/models"
)

// CandleStore persists and queries raw candle records. Nothing derived from a
// run (ratings, portfolios) is ever written back; every run recomputes fresh.
type CandleStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, c *models.Candle) error
	StoreBatch(ctx context.Context, candles []*models.Candle) error
	Query(ctx context.Context, symbol string, from, to int64, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// RatingPublisher ships computed rating snapshots across the process boundary.
type RatingPublisher interface {
	Publish(ctx context.Context, r *models.RatingSnapshot) error
	PublishBatch(ctx context.Context, ratings []models.RatingSnapshot) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordRating(symbol string, rating float64)
	RecordLatency(op string, seconds float64)
}
