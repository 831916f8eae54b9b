package repository

import (
	"context"
	"errors"
	"testing"

	"GigaStonks/internal/domain/models"
	pkgkafka "GigaStonks/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	topic string
	key   []byte
	value interface{}
}

type fakeProducer struct {
	single []sent
	batch  map[string][]pkgkafka.Message
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.single = append(f.single, sent{topic: topic, key: key, value: value})
	return nil
}

func (f *fakeProducer) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	if f.batch == nil {
		f.batch = map[string][]pkgkafka.Message{}
	}
	f.batch[topic] = append(f.batch[topic], msgs...)
	return nil
}

func (f *fakeProducer) Close() error { f.closed = true; return nil }

func TestKafkaPublisherSnapshot(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaPublisher(fp, "quotes.snapshots")

	res := &models.AggregateResult{Index: "djia", Sentiment: models.Bullish}
	require.NoError(t, p.PublishSnapshot(context.Background(), res))

	require.Len(t, fp.single, 1)
	assert.Equal(t, "quotes.snapshots", fp.single[0].topic)
	assert.Equal(t, []byte("djia"), fp.single[0].key)
	ev, ok := fp.single[0].value.(SnapshotEvent)
	require.True(t, ok)
	assert.NotEmpty(t, ev.EventID)
	assert.Same(t, res, ev.Snapshot)

	require.NoError(t, p.Close())
	assert.True(t, fp.closed)
}

func TestKafkaPublisherSnapshotError(t *testing.T) {
	fp := &fakeProducer{err: errors.New("broker down")}
	p := NewKafkaPublisher(fp, "t")
	err := p.PublishSnapshot(context.Background(), &models.AggregateResult{Index: "nasdaq"})
	require.Error(t, err)
	assert.ErrorIs(t, err, fp.err)
}

func TestKafkaPublisherMessageSplitsSlices(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaPublisher(fp, "ignored")

	require.NoError(t, p.PublishMessage(context.Background(), "logs", []string{"a", "b", "c"}))
	assert.Len(t, fp.batch["logs"], 3)

	require.NoError(t, p.PublishMessage(context.Background(), "logs", "single"))
	assert.Len(t, fp.single, 1)
}
