package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"GigaStonks/internal/domain/models"
	domrepo "GigaStonks/internal/domain/repository"
	"GigaStonks/internal/service/cache"
	applogger "GigaStonks/pkg/logger"
)

// ErrUnknownIndex is returned for a selector that names no configured index.
var ErrUnknownIndex = errors.New("unknown index")

// UnknownIndexError carries the rejected selector and the accepted ones.
type UnknownIndexError struct {
	Index string
	Known []string
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("%s %q, expected one of: %s", ErrUnknownIndex, e.Index, strings.Join(e.Known, ", "))
}

func (e *UnknownIndexError) Unwrap() error { return ErrUnknownIndex }

// QuoteService resolves an index, fans out the quote fetches and reduces the batch.
type QuoteService struct {
	book       *models.IndexBook
	dispatcher *Dispatcher
	aggregator *Aggregator
	cache      cache.BytesCache
	cacheTTL   time.Duration
	publisher  domrepo.SnapshotPublisher
	metrics    domrepo.Metrics
	logger     *applogger.Logger
	now        func() time.Time
}

// QuoteServiceOption configures QuoteService.
type QuoteServiceOption func(*QuoteService)

// WithCache serves repeated requests for the same index from c for ttl.
// A zero ttl disables caching.
func WithCache(c cache.BytesCache, ttl time.Duration) QuoteServiceOption {
	return func(s *QuoteService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPublisher emits every freshly computed aggregate.
func WithPublisher(p domrepo.SnapshotPublisher) QuoteServiceOption {
	return func(s *QuoteService) { s.publisher = p }
}

func WithServiceMetrics(m domrepo.Metrics) QuoteServiceOption {
	return func(s *QuoteService) { s.metrics = m }
}

func WithServiceLogger(l *applogger.Logger) QuoteServiceOption {
	return func(s *QuoteService) { s.logger = l }
}

func NewQuoteService(book *models.IndexBook, d *Dispatcher, a *Aggregator, opts ...QuoteServiceOption) *QuoteService {
	s := &QuoteService{
		book:       book,
		dispatcher: d,
		aggregator: a,
		logger:     applogger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Indices lists the accepted selectors.
func (s *QuoteService) Indices() []string { return s.book.Names() }

// IndexQuotes returns the aggregate for index. An unknown index fails with an
// error wrapping ErrUnknownIndex before any upstream call is made.
func (s *QuoteService) IndexQuotes(ctx context.Context, index string) (*models.AggregateResult, error) {
	reg, ok := s.book.Lookup(index)
	if !ok {
		return nil, &UnknownIndexError{Index: index, Known: s.book.Names()}
	}

	key := "quotes:" + index
	if res, ok := s.cached(ctx, key); ok {
		return res, nil
	}

	start := time.Now()
	quotes := s.dispatcher.DispatchAll(ctx, reg.Entries())
	res := s.aggregator.Aggregate(quotes)
	res.Index = index
	res.GeneratedAt = s.now().UTC()

	s.logger.Info("index aggregated",
		applogger.String("index", index),
		applogger.Int("quotes", len(quotes)),
		applogger.Int("gainers", len(res.Gainers)),
		applogger.Int("losers", len(res.Losers)),
		applogger.String("sentiment", string(res.Sentiment)),
		applogger.Int64("rate_limit_remaining", res.RateLimitRemaining),
		applogger.Duration("took", time.Since(start)),
	)
	if s.metrics != nil {
		s.metrics.RecordAggregate(index, &res)
		s.metrics.RecordLatency("index_quotes", time.Since(start).Seconds())
	}

	// a cancelled request yields a batch of placeholders; don't let it poison the cache
	if ctx.Err() == nil {
		s.store(ctx, key, &res)
		s.publish(ctx, &res)
	}
	return &res, nil
}

func (s *QuoteService) cached(ctx context.Context, key string) (*models.AggregateResult, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	b, ok, err := s.cache.GetBytes(ctx, key)
	if err != nil {
		s.logger.Warn("quote cache read failed", applogger.String("key", key), applogger.Error(err))
		s.recordError("cache_read")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res models.AggregateResult
	if err := json.Unmarshal(b, &res); err != nil {
		s.logger.Warn("quote cache entry corrupt", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	return &res, true
}

func (s *QuoteService) store(ctx context.Context, key string, res *models.AggregateResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		s.logger.Warn("quote cache encode failed", applogger.Error(err))
		return
	}
	if err := s.cache.SetBytes(ctx, key, b, s.cacheTTL); err != nil {
		s.logger.Warn("quote cache write failed", applogger.String("key", key), applogger.Error(err))
		s.recordError("cache_write")
	}
}

func (s *QuoteService) publish(ctx context.Context, res *models.AggregateResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSnapshot(ctx, res); err != nil {
		s.logger.Warn("snapshot publish failed", applogger.String("index", res.Index), applogger.Error(err))
		s.recordError("publish")
	}
}

func (s *QuoteService) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}
