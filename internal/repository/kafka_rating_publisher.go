package repository

import (
	"context"
	"fmt"

	"GlickoLab/internal/domain/models"
	domrepo "GlickoLab/internal/domain/repository"
	pkgkafka "GlickoLab/pkg/kafka"
)

// KafkaRatingPublisher ships rating snapshots to a Kafka topic, keyed by
// symbol so each symbol's series stays ordered within its partition.
type KafkaRatingPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRatingPublisher(producer *pkgkafka.Producer, topic string) *KafkaRatingPublisher {
	return &KafkaRatingPublisher{producer: producer, topic: topic}
}

func (p *KafkaRatingPublisher) Publish(ctx context.Context, r *models.RatingSnapshot) error {
	if r == nil {
		return fmt.Errorf("rating is nil")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(r.Symbol), r); err != nil {
		return fmt.Errorf("publish rating %s@%d: %w", r.Symbol, r.Timestamp, err)
	}
	return nil
}

func (p *KafkaRatingPublisher) PublishBatch(ctx context.Context, ratings []models.RatingSnapshot) error {
	if len(ratings) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(ratings))
	for i := range ratings {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(ratings[i].Symbol),
			Value: ratings[i],
		})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish rating batch: %w", err)
	}
	return nil
}

func (p *KafkaRatingPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.RatingPublisher = (*KafkaRatingPublisher)(nil)
