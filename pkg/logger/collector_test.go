package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
	err     error
}

func (p *memPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return p.err
}

func (p *memPublisher) entries() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestCollectorDeduplicatesAndFlushesOnClose(t *testing.T) {
	pub := &memPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	fields := map[string]interface{}{"symbol": "AAPL"}
	c.AddLog("error", "quote fetch failed", fields, "a.go:1")
	c.AddLog("error", "quote fetch failed", map[string]interface{}{"symbol": "AAPL"}, "a.go:1")
	c.AddLog("error", "quote fetch failed", map[string]interface{}{"symbol": "IBM"}, "a.go:1")
	c.Close()

	got := pub.entries()
	require.Len(t, got, 2)
	assert.Equal(t, "logs", pub.topic)
	counts := map[interface{}]int{}
	for _, e := range got {
		counts[e.Fields["symbol"]] = e.Count
	}
	assert.Equal(t, map[interface{}]int{"AAPL": 2, "IBM": 1}, counts)
}

func TestCollectorThreshold(t *testing.T) {
	pub := &memPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})

	c.AddLog("error", "a", nil, "x")
	c.AddLog("error", "b", nil, "x")
	c.AddLog("error", "c", nil, "x")
	c.Close()

	assert.Len(t, pub.entries(), 3)
	assert.GreaterOrEqual(t, len(pub.batches), 2)
}

func TestCollectorReportsPublishErrors(t *testing.T) {
	var dropped int
	pub := &memPublisher{err: errors.New("broker down")}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 10,
		Publisher:      pub,
		OnError:        func(_ error, n int) { dropped += n },
	})
	c.AddLog("error", "a", nil, "x")
	c.Close()
	assert.Equal(t, 1, dropped)
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &memPublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Publisher: pub})

	l.Error("boom", String("k", "v"))
	l.Info("ignored")
	l.RemoveCollector()

	got := pub.entries()
	require.Len(t, got, 1)
	assert.Equal(t, "boom", got[0].Message)
	assert.Equal(t, "v", got[0].Fields["k"])
}
