package metrics

import (
	"GigaStonks/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches       *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	rateRemaining prometheus.Gauge
	gainers       *prometheus.GaugeVec
	losers        *prometheus.GaugeVec
	sentiment     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder's collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigastonks_quote_fetch_total",
				Help: "Upstream quote fetches by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigastonks_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		rateRemaining: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "gigastonks_upstream_ratelimit_remaining",
				Help: "Last X-Ratelimit-Remaining value reported by the quote provider",
			},
		),
		gainers: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gigastonks_index_gainers",
				Help: "Number of gaining tickers in the last aggregate",
			},
			[]string{"index"},
		),
		losers: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gigastonks_index_losers",
				Help: "Number of losing tickers in the last aggregate",
			},
			[]string{"index"},
		),
		sentiment: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gigastonks_index_sentiment",
				Help: "Last sentiment per index: 1 bullish, 0 neutral, -1 bearish",
			},
			[]string{"index"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gigastonks_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch counts one upstream quote fetch.
func (r *Recorder) RecordFetch(outcome models.QuoteStatus) {
	r.fetches.WithLabelValues(string(outcome)).Inc()
}

// RecordRateLimit stores the latest remaining upstream budget.
func (r *Recorder) RecordRateLimit(remaining int64) {
	r.rateRemaining.Set(float64(remaining))
}

// RecordAggregate exports the shape of an index aggregate.
func (r *Recorder) RecordAggregate(index string, res *models.AggregateResult) {
	r.gainers.WithLabelValues(index).Set(float64(len(res.Gainers)))
	r.losers.WithLabelValues(index).Set(float64(len(res.Losers)))
	var v float64
	switch res.Sentiment {
	case models.Bullish:
		v = 1
	case models.Bearish:
		v = -1
	}
	r.sentiment.WithLabelValues(index).Set(v)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
