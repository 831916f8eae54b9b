package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"GigaStonks/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher answers from a table. A ticker listed in panics panics, one in
// fail yields an unreachable placeholder, and delay holds a fetch back.
type fakeFetcher struct {
	dp     map[string]float64
	delay  map[string]time.Duration
	fail   map[string]bool
	panics map[string]bool

	calls    int32
	inFlight int32
	peak     int32
	mu       sync.Mutex
	seen     []string
}

func (f *fakeFetcher) FetchQuote(ctx context.Context, e models.IndexEntry) models.EnrichedQuote {
	atomic.AddInt32(&f.calls, 1)
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if cur <= p || atomic.CompareAndSwapInt32(&f.peak, p, cur) {
			break
		}
	}
	f.mu.Lock()
	f.seen = append(f.seen, e.Ticker)
	f.mu.Unlock()

	if d := f.delay[e.Ticker]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return models.PlaceholderQuote(e, models.RateLimitSnapshot{}, models.QuoteUnreachable, time.Now())
		}
	}
	if f.panics[e.Ticker] {
		panic("boom " + e.Ticker)
	}
	if f.fail[e.Ticker] {
		return models.PlaceholderQuote(e, models.RateLimitSnapshot{}, models.QuoteUnreachable, time.Now())
	}
	return models.EnrichedQuote{
		RawQuote:    models.RawQuote{DeltaPercent: f.dp[e.Ticker], Timestamp: 1},
		Ticker:      e.Ticker,
		DisplayName: e.DisplayName,
		RateLimit:   models.RateLimitSnapshot{Remaining: 50, ResetAt: 1000},
		Status:      models.QuoteOK,
	}
}

func entries(syms ...string) []models.IndexEntry {
	out := make([]models.IndexEntry, 0, len(syms))
	for _, s := range syms {
		out = append(out, models.IndexEntry{Ticker: s, DisplayName: s + " Corp"})
	}
	return out
}

func TestDispatchAllKeepsRegistryOrder(t *testing.T) {
	f := &fakeFetcher{delay: map[string]time.Duration{
		"A": 60 * time.Millisecond,
		"B": 30 * time.Millisecond,
		"C": 0,
		"D": 10 * time.Millisecond,
	}}
	d := NewDispatcher(f, nil)

	out := d.DispatchAll(context.Background(), entries("A", "B", "C", "D"))

	assert.Equal(t, []string{"A", "B", "C", "D"}, tickers(out))
	assert.EqualValues(t, 4, atomic.LoadInt32(&f.calls))
}

func TestDispatchAllRunsConcurrently(t *testing.T) {
	syms := []string{"A", "B", "C", "D", "E", "F"}
	delay := map[string]time.Duration{}
	for _, s := range syms {
		delay[s] = 50 * time.Millisecond
	}
	f := &fakeFetcher{delay: delay}

	start := time.Now()
	out := NewDispatcher(f, nil).DispatchAll(context.Background(), entries(syms...))

	require.Len(t, out, len(syms))
	assert.EqualValues(t, len(syms), atomic.LoadInt32(&f.peak))
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestDispatchAllFailedFetchStillCounted(t *testing.T) {
	f := &fakeFetcher{
		dp:   map[string]float64{"A": 1.2, "B": -0.4, "D": 0.3, "E": -2},
		fail: map[string]bool{"C": true},
	}
	out := NewDispatcher(f, nil).DispatchAll(context.Background(), entries("A", "B", "C", "D", "E"))

	require.Len(t, out, 5)
	assert.Equal(t, "C", out[2].Ticker)
	assert.Equal(t, models.QuoteUnreachable, out[2].Status)
	assert.Zero(t, out[2].DeltaPercent)

	res := NewAggregator(models.ResetLastInSubmissionOrder).Aggregate(out)
	assert.Equal(t, 5, res.Total())
	assert.Equal(t, 1, res.Unchanged)
	assert.NotContains(t, tickers(res.Gainers), "C")
	assert.NotContains(t, tickers(res.Losers), "C")
}

func TestDispatchAllRecoversPanics(t *testing.T) {
	f := &fakeFetcher{
		dp:     map[string]float64{"A": 1, "C": -1},
		panics: map[string]bool{"B": true},
	}
	out := NewDispatcher(f, nil).DispatchAll(context.Background(), entries("A", "B", "C"))

	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].Ticker)
	assert.Equal(t, models.QuoteMissing, out[1].Status)
	assert.Empty(t, out[1].Ticker)
	assert.Empty(t, out[1].DisplayName)
	assert.Equal(t, models.RateLimitSnapshot{}, out[1].RateLimit)
	assert.Equal(t, "C", out[2].Ticker)
}

func TestDispatchAllCancellation(t *testing.T) {
	f := &fakeFetcher{delay: map[string]time.Duration{"A": time.Second, "B": time.Second}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	out := NewDispatcher(f, nil).DispatchAll(ctx, entries("A", "B"))

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	require.Len(t, out, 2)
	for _, q := range out {
		assert.Equal(t, models.QuoteUnreachable, q.Status)
	}
}

func TestDispatchAllEmpty(t *testing.T) {
	out := NewDispatcher(&fakeFetcher{}, nil).DispatchAll(context.Background(), nil)
	assert.Empty(t, out)
}
