//go:build wireinject
// +build wireinject

package di

import (
	"GigaStonks/pkg/config"
	"GigaStonks/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideFinnhubClient,
		ProvideAlphaVantageClient,
		ProvideCache,
		ProvideKafkaProducer,

		// Repositories
		ProvideQuoteFetcher,
		ProvideMarketData,
		ProvideMarketStatusSource,
		ProvideKafkaPublisher,
		ProvideSnapshotPublisher,

		// Use cases
		ProvideIndexBook,
		ProvideDispatcher,
		ProvideAggregator,
		ProvideQuoteService,
		ProvideMarketService,

		// HTTP
		ProvideLimiter,
		ProvideRouter,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
