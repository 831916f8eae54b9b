package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"GigaStonks/internal/domain/repository"
	icache "GigaStonks/internal/service/cache"
	"GigaStonks/pkg/config"
	xhttp "GigaStonks/pkg/http"
	applogger "GigaStonks/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg          *config.Config
	log          *applogger.Logger
	httpServer   *xhttp.Server
	httpHandler  xhttp.Handler
	cache        icache.BytesCache
	publisher    repository.SnapshotPublisher
	logPublisher applogger.Publisher
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	cache icache.BytesCache,
	publisher repository.SnapshotPublisher,
) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:         cfg,
		log:         log,
		httpHandler: handler,
		cache:       cache,
		publisher:   publisher,
	}
}

// SetLogPublisher enables shipping aggregated error logs when the collector is on.
func (a *App) SetLogPublisher(p applogger.Publisher) { a.logPublisher = p }

// Server returns the HTTP server once Start has been called.
func (a *App) Server() *xhttp.Server { return a.httpServer }

// Start brings up the log collector and the HTTP server without blocking.
func (a *App) Start() error {
	if a.cfg.Logging.Collector.Enabled && a.logPublisher != nil {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   a.cfg.Logging.Collector.Interval,
			CountThreshold: a.cfg.Logging.Collector.Threshold,
			Topic:          a.cfg.Logging.Collector.Topic,
			Publisher:      a.logPublisher,
		})
		a.log.Info("log collector started", applogger.String("topic", a.cfg.Logging.Collector.Topic))
	}

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithMetrics(metricsPath, a.cfg.Metrics.SlowThreshold),
		xhttp.WithLogger(a.log),
	)

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server start: %w", err)
	}
	a.log.Info("app started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Int("indices", len(a.cfg.Indices)),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)
	return nil
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	if err := a.Start(); err != nil {
		a.log.Error("app start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.Shutdown(context.Background())
}

// Shutdown gracefully stops all services. In-flight requests finish first,
// so their snapshots still reach the publisher before it is closed.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	// flushes the remaining aggregated logs through the producer
	a.log.RemoveCollector()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
