package repository

import (
	"context"
	"time"

	"GigaStonks/internal/domain/models"
)

// QuoteFetcher produces exactly one EnrichedQuote per entry and never fails.
// Upstream problems are reported through EnrichedQuote.Status.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, entry models.IndexEntry) models.EnrichedQuote
}

// MarketData serves the passthrough news, profile and social endpoints.
type MarketData interface {
	MarketNews(ctx context.Context, category string) ([]models.NewsArticle, error)
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsArticle, error)
	CompanyProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error)
	SocialSentiment(ctx context.Context, symbol string, from time.Time) (*models.SocialSentiment, error)
}

// MarketStatusSource reports which regional markets are open.
type MarketStatusSource interface {
	MarketStatus(ctx context.Context) ([]models.MarketStatus, error)
}

// SnapshotPublisher emits computed aggregates to downstream consumers.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, res *models.AggregateResult) error
	Close() error
}

type Metrics interface {
	RecordFetch(outcome models.QuoteStatus)
	RecordRateLimit(remaining int64)
	RecordAggregate(index string, res *models.AggregateResult)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
