package usecase

import (
	"context"
	"encoding/json"
	"time"

	"GlickoLab/internal/domain/models"
	domrepo "GlickoLab/internal/domain/repository"
	pkgkafka "GlickoLab/pkg/kafka"
)

// KafkaCandlesHandler consumes candle messages and writes them to storage.
type KafkaCandlesHandler struct {
	topic     string
	processor *CandleProcessor
	metrics   domrepo.Metrics
}

func NewKafkaCandlesHandler(topic string, processor *CandleProcessor, metrics domrepo.Metrics) *KafkaCandlesHandler {
	return &KafkaCandlesHandler{topic: topic, processor: processor, metrics: metrics}
}

func (h *KafkaCandlesHandler) Topic() string { return h.topic }

// Handle decodes one candle message. Malformed payloads are counted and
// returned as errors so the consumer's DLQ policy applies.
func (h *KafkaCandlesHandler) Handle(ctx context.Context, b []byte) error {
	var c models.Candle
	if err := json.Unmarshal(b, &c); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if err := c.Validate(); err != nil {
		h.metrics.RecordError("consumer_validate")
		return err
	}

	// E2E latency from candle close to now (approx).
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.UnixMilli(c.CloseTime)).Seconds())

	return h.processor.Process(ctx, &c)
}

var _ pkgkafka.MessageHandler = (*KafkaCandlesHandler)(nil)
