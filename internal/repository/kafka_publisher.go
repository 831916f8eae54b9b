package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"GigaStonks/internal/domain/models"
	"GigaStonks/internal/domain/repository"
	pkgkafka "GigaStonks/pkg/kafka"

	"github.com/google/uuid"
)

// producer is the subset of *pkgkafka.Producer the publishers need.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// SnapshotEvent is the Kafka payload for one computed index aggregate.
type SnapshotEvent struct {
	EventID     string                  `json:"eventId"`
	PublishedAt time.Time               `json:"publishedAt"`
	Snapshot    *models.AggregateResult `json:"snapshot"`
}

// KafkaPublisher implements SnapshotPublisher for Kafka. It also satisfies
// logger.Publisher so the log collector can ship through the same producer.
type KafkaPublisher struct {
	producer producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(p producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

// PublishSnapshot sends one snapshot keyed by index name, so per-index order is kept.
func (p *KafkaPublisher) PublishSnapshot(ctx context.Context, res *models.AggregateResult) error {
	ev := SnapshotEvent{
		EventID:     uuid.NewString(),
		PublishedAt: time.Now().UTC(),
		Snapshot:    res,
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(res.Index), ev); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", res.Index, err)
	}
	return nil
}

// PublishMessage publishes an arbitrary payload; slices are split into one message per element.
func (p *KafkaPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	v := reflect.ValueOf(payload)
	if v.Kind() != reflect.Slice {
		return p.producer.Publish(ctx, topic, nil, payload)
	}
	msgs := make([]pkgkafka.Message, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		msgs = append(msgs, pkgkafka.Message{Value: v.Index(i).Interface()})
	}
	return p.producer.PublishBatch(ctx, topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops snapshots; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishSnapshot(context.Context, *models.AggregateResult) error { return nil }
func (NopPublisher) Close() error                                                 { return nil }

var (
	_ repository.SnapshotPublisher = (*KafkaPublisher)(nil)
	_ repository.SnapshotPublisher = NopPublisher{}
)
