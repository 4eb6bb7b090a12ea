package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GlickoLab/internal/domain/models"
	domrepo "GlickoLab/internal/domain/repository"
)

// CandleProcessor buffers incoming candles and flushes them to storage in
// batches, by size or by age, whichever comes first.
type CandleProcessor struct {
	store   domrepo.CandleStore
	metrics domrepo.Metrics
	batchSz int
	batchTO time.Duration

	mu      sync.Mutex
	pending []*models.Candle
	lastAt  time.Time
}

func NewCandleProcessor(store domrepo.CandleStore, metrics domrepo.Metrics, batchSz int, batchTO time.Duration) *CandleProcessor {
	if batchSz <= 0 {
		batchSz = 100
	}
	if batchTO <= 0 {
		batchTO = 2 * time.Second
	}
	return &CandleProcessor{
		store:   store,
		metrics: metrics,
		batchSz: batchSz,
		batchTO: batchTO,
		lastAt:  time.Now(),
	}
}

// Process queues one candle, flushing when the batch fills or ages out.
func (p *CandleProcessor) Process(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}

	p.mu.Lock()
	p.pending = append(p.pending, c)
	shouldFlush := len(p.pending) >= p.batchSz || time.Since(p.lastAt) >= p.batchTO
	var batch []*models.Candle
	if shouldFlush {
		batch = p.pending
		p.pending = nil
		p.lastAt = time.Now()
	}
	p.mu.Unlock()

	if batch == nil {
		return nil
	}
	return p.flush(ctx, batch)
}

// Flush drains whatever is pending regardless of batch thresholds.
func (p *CandleProcessor) Flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.lastAt = time.Now()
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return p.flush(ctx, batch)
}

func (p *CandleProcessor) flush(ctx context.Context, batch []*models.Candle) error {
	if p.store == nil {
		return fmt.Errorf("no candle store configured")
	}
	start := time.Now()
	if err := p.store.StoreBatch(ctx, batch); err != nil {
		p.metrics.RecordError("store_batch")
		return fmt.Errorf("flush candles: %w", err)
	}
	p.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	for _, c := range batch {
		p.metrics.RecordMessageSent("clickhouse", c.Symbol)
	}
	return nil
}
