package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gigastonks",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of market data endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gigastonks",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by market data endpoint",
		},
		[]string{"endpoint"},
	)

	StreamSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gigastonks",
			Subsystem: "api",
			Name:      "stream_sessions",
			Help:      "Open quote stream websocket sessions",
		},
	)
)

// Register adds the API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, StreamSessions)
	})
}
