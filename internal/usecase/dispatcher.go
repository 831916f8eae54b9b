package usecase

import (
	"context"
	"fmt"
	"time"

	"GigaStonks/internal/domain/models"
	domrepo "GigaStonks/internal/domain/repository"
	applogger "GigaStonks/pkg/logger"
)

// Dispatcher fans one fetch per index entry out to its own goroutine and
// collects the results back in entry order.
type Dispatcher struct {
	fetcher domrepo.QuoteFetcher
	logger  *applogger.Logger
	now     func() time.Time
}

func NewDispatcher(fetcher domrepo.QuoteFetcher, logger *applogger.Logger) *Dispatcher {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Dispatcher{fetcher: fetcher, logger: logger, now: time.Now}
}

// DispatchAll returns exactly one quote per entry, in the order of entries.
// Every fetch starts immediately; ctx cancellation is passed to each of them.
// A fetch goroutine that panics is replaced by models.MissingQuote.
func (d *Dispatcher) DispatchAll(ctx context.Context, entries []models.IndexEntry) []models.EnrichedQuote {
	results := make([]chan models.EnrichedQuote, len(entries))
	for i, entry := range entries {
		// buffered so a goroutine never blocks on a slow consumer
		ch := make(chan models.EnrichedQuote, 1)
		results[i] = ch
		go d.run(ctx, entry, ch)
	}

	out := make([]models.EnrichedQuote, 0, len(entries))
	for _, ch := range results {
		out = append(out, <-ch)
	}
	return out
}

func (d *Dispatcher) run(ctx context.Context, entry models.IndexEntry, ch chan<- models.EnrichedQuote) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("quote fetch task crashed",
				applogger.String("symbol", entry.Ticker),
				applogger.String("panic", fmt.Sprint(r)),
			)
			ch <- models.MissingQuote(d.now())
		}
	}()
	ch <- d.fetcher.FetchQuote(ctx, entry)
}
