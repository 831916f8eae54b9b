package di

import (
	"context"
	"fmt"
	"time"

	"GigaStonks/internal/domain/models"
	"GigaStonks/internal/domain/repository"
	"GigaStonks/internal/handler/api"
	mid "GigaStonks/internal/middleware"
	internalrepo "GigaStonks/internal/repository"
	"GigaStonks/internal/service/alphavantage"
	icache "GigaStonks/internal/service/cache"
	"GigaStonks/internal/service/finnhub"
	apimetrics "GigaStonks/internal/service/metrics"
	"GigaStonks/internal/service/ratelimit"
	"GigaStonks/internal/usecase"
	"GigaStonks/pkg/config"
	xhttp "GigaStonks/pkg/http"
	pkgkafka "GigaStonks/pkg/kafka"
	applogger "GigaStonks/pkg/logger"
	"GigaStonks/pkg/metrics"
	"GigaStonks/pkg/server"

	"github.com/labstack/echo/v4"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	apimetrics.Register()
	return metrics.New()
}

// ProvideHTTPClient creates the pooled upstream client shared by every fetch.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Finnhub.Timeout),
		xhttp.WithMaxIdleConns(cfg.Finnhub.MaxIdleConns),
		xhttp.WithUserAgent(cfg.Finnhub.UserAgent),
	)
}

// ProvideFinnhubClient creates the Finnhub REST client.
func ProvideFinnhubClient(cfg *config.Config, hc *xhttp.Client, m repository.Metrics, l *applogger.Logger) *finnhub.Client {
	return finnhub.New(cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey, hc,
		finnhub.WithMetrics(m),
		finnhub.WithLogger(l),
	)
}

func ProvideQuoteFetcher(c *finnhub.Client) repository.QuoteFetcher { return c }

func ProvideMarketData(c *finnhub.Client) repository.MarketData { return c }

// ProvideAlphaVantageClient creates the market-hours client. Without a key it
// is still built and answers every call with alphavantage.ErrNoAPIKey.
func ProvideAlphaVantageClient(cfg *config.Config, hc *xhttp.Client, l *applogger.Logger) *alphavantage.Client {
	return alphavantage.New(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey, hc,
		alphavantage.WithRegions(cfg.AlphaVantage.Regions),
		alphavantage.WithLogger(l),
	)
}

func ProvideMarketStatusSource(c *alphavantage.Client) repository.MarketStatusSource { return c }

// ProvideIndexBook freezes the configured registries.
func ProvideIndexBook(cfg *config.Config) (*models.IndexBook, error) {
	book, err := usecase.NewIndexBookFromConfig(cfg.Indices)
	if err != nil {
		return nil, fmt.Errorf("index book: %w", err)
	}
	return book, nil
}

func ProvideDispatcher(f repository.QuoteFetcher, l *applogger.Logger) *usecase.Dispatcher {
	return usecase.NewDispatcher(f, l)
}

func ProvideAggregator(cfg *config.Config) *usecase.Aggregator {
	return usecase.NewAggregator(models.ResetRule(cfg.Quotes.ResetSelection))
}

// ProvideCache creates the response cache for the configured backend.
func ProvideCache(cfg *config.Config) (icache.BytesCache, error) {
	if cfg.Cache.Backend != "redis" {
		return icache.NewTTLCache(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := icache.NewRedisCache(ctx, icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID(cfg.Kafka.ClientID),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaPublisher wraps the producer; nil when Kafka is disabled.
func ProvideKafkaPublisher(producer *pkgkafka.Producer, cfg *config.Config) *internalrepo.KafkaPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideSnapshotPublisher falls back to a no-op publisher without Kafka.
func ProvideSnapshotPublisher(kp *internalrepo.KafkaPublisher) repository.SnapshotPublisher {
	if kp == nil {
		return internalrepo.NopPublisher{}
	}
	return kp
}

func ProvideQuoteService(
	cfg *config.Config,
	book *models.IndexBook,
	d *usecase.Dispatcher,
	a *usecase.Aggregator,
	c icache.BytesCache,
	pub repository.SnapshotPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.QuoteService {
	return usecase.NewQuoteService(book, d, a,
		usecase.WithCache(c, cfg.Quotes.CacheTTL),
		usecase.WithPublisher(pub),
		usecase.WithServiceMetrics(m),
		usecase.WithServiceLogger(l),
	)
}

func ProvideMarketService(md repository.MarketData, ms repository.MarketStatusSource) *usecase.MarketService {
	return usecase.NewMarketService(md, ms)
}

func ProvideLimiter() *ratelimit.Limiter { return ratelimit.New() }

// ProvideRouter builds the HTTP routes with per-client throttling on the API group.
func ProvideRouter(
	cfg *config.Config,
	l *applogger.Logger,
	qs *usecase.QuoteService,
	ms *usecase.MarketService,
	lim *ratelimit.Limiter,
) *api.Router {
	var mw []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		mw = append(mw, mid.Throttle(lim, mid.ThrottleConfig{
			Capacity:     cfg.RateLimit.Capacity,
			RefillPerSec: cfg.RateLimit.RefillPerSec,
			IdleTTL:      10 * time.Minute,
		}, l))
	}
	return api.NewRouter(
		api.NewQuotesEchoHandler(l, qs),
		api.NewMarketEchoHandler(l, ms),
		mw...,
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	router *api.Router,
	c icache.BytesCache,
	pub repository.SnapshotPublisher,
	kp *internalrepo.KafkaPublisher,
) *server.App {
	app := server.New(cfg, l, router, c, pub)
	if kp != nil {
		app.SetLogPublisher(kp)
	}
	return app
}
