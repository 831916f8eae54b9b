package usecase

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"GigaStonks/internal/domain/models"
	"GigaStonks/internal/service/cache"
	"GigaStonks/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	got []*models.AggregateResult
	err error
}

func (p *recordingPublisher) PublishSnapshot(_ context.Context, r *models.AggregateResult) error {
	p.got = append(p.got, r)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newBook(t *testing.T) *models.IndexBook {
	t.Helper()
	book, err := models.NewIndexBook(
		models.NewRegistry("djia", entries("AAPL", "IBM", "KO")),
		models.NewRegistry("nasdaq", entries("MSFT", "NVDA")),
	)
	require.NoError(t, err)
	return book
}

func TestIndexQuotes(t *testing.T) {
	f := &fakeFetcher{dp: map[string]float64{"AAPL": 2, "IBM": -1, "KO": 0}}
	pub := &recordingPublisher{}
	svc := NewQuoteService(newBook(t), NewDispatcher(f, nil), NewAggregator(models.ResetLastInSubmissionOrder),
		WithPublisher(pub))
	stamp := time.Date(2026, 3, 2, 15, 30, 0, 0, time.FixedZone("EST", -5*3600))
	svc.now = func() time.Time { return stamp }

	res, err := svc.IndexQuotes(context.Background(), "djia")
	require.NoError(t, err)

	assert.Equal(t, "djia", res.Index)
	assert.Equal(t, stamp.UTC(), res.GeneratedAt)
	assert.Equal(t, time.UTC, res.GeneratedAt.Location())
	assert.Equal(t, 3, res.Total())
	assert.Equal(t, models.Bullish, res.Sentiment)
	assert.Equal(t, []string{"AAPL"}, tickers(res.Gainers))
	assert.Equal(t, []string{"IBM"}, tickers(res.Losers))
	require.Len(t, pub.got, 1)
	assert.Equal(t, "djia", pub.got[0].Index)
}

func TestIndexQuotesUnknownIndexMakesNoCalls(t *testing.T) {
	f := &fakeFetcher{}
	svc := NewQuoteService(newBook(t), NewDispatcher(f, nil), NewAggregator(models.ResetLastInSubmissionOrder))

	res, err := svc.IndexQuotes(context.Background(), "xyz")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownIndex))
	var uie *UnknownIndexError
	require.ErrorAs(t, err, &uie)
	assert.Equal(t, "xyz", uie.Index)
	assert.Equal(t, []string{"djia", "nasdaq"}, uie.Known)
	assert.Contains(t, err.Error(), "djia, nasdaq")
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.calls))
}

func TestIndexQuotesSelectorIsCaseSensitive(t *testing.T) {
	svc := NewQuoteService(newBook(t), NewDispatcher(&fakeFetcher{}, nil), NewAggregator(""))
	_, err := svc.IndexQuotes(context.Background(), "DJIA")
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestIndexQuotesCache(t *testing.T) {
	f := &fakeFetcher{dp: map[string]float64{"MSFT": 1, "NVDA": 2}}
	svc := NewQuoteService(newBook(t), NewDispatcher(f, nil), NewAggregator(models.ResetLastInSubmissionOrder),
		WithCache(cache.NewTTLCache(), time.Minute))

	first, err := svc.IndexQuotes(context.Background(), "nasdaq")
	require.NoError(t, err)
	second, err := svc.IndexQuotes(context.Background(), "nasdaq")
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&f.calls))
	assert.Equal(t, tickers(first.Gainers), tickers(second.Gainers))
	assert.Equal(t, first.Sentiment, second.Sentiment)
}

func TestIndexQuotesPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewQuoteService(newBook(t), NewDispatcher(&fakeFetcher{}, nil), NewAggregator(""),
		WithPublisher(pub))

	res, err := svc.IndexQuotes(context.Background(), "djia")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Len(t, pub.got, 1)
}

func TestIndexQuotesShippedDJIA(t *testing.T) {
	b, err := os.ReadFile("../../config/config.yaml")
	require.NoError(t, err)
	cfg, err := config.Parse(b)
	require.NoError(t, err)
	book, err := NewIndexBookFromConfig(cfg.Indices)
	require.NoError(t, err)

	f := &fakeFetcher{}
	svc := NewQuoteService(book, NewDispatcher(f, nil), NewAggregator(models.ResetLastInSubmissionOrder))

	res, err := svc.IndexQuotes(context.Background(), "djia")
	require.NoError(t, err)
	assert.Equal(t, 30, res.Total())
	assert.EqualValues(t, 30, atomic.LoadInt32(&f.calls))

	reg, ok := book.Lookup("nasdaq")
	require.True(t, ok)
	assert.Equal(t, 60, reg.Len())
}
