package models

import "time"

// Sentiment is the market mood derived from gainer/loser counts.
type Sentiment string

const (
	Bullish Sentiment = "Bullish"
	Bearish Sentiment = "Bearish"
	Neutral Sentiment = "Neutral"
)

// ResetRule names how the batch-level rate-limit reset time is chosen.
type ResetRule string

const (
	// ResetLastInSubmissionOrder takes the reset of the last quote in registry order.
	ResetLastInSubmissionOrder ResetRule = "last-in-submission-order"
	// ResetMaxAcrossBatch takes the largest reset in the batch.
	ResetMaxAcrossBatch ResetRule = "max-across-batch"
)

// Valid reports whether r is a known rule.
func (r ResetRule) Valid() bool {
	return r == ResetLastInSubmissionOrder || r == ResetMaxAcrossBatch
}

// AggregateResult is the sentiment summary of one index batch.
type AggregateResult struct {
	Index              string          `json:"index"`
	Sentiment          Sentiment       `json:"sentiment"`
	AvgGainPercent     *float64        `json:"avgGainPercent"` // nil when there are no gainers
	AvgLossPercent     *float64        `json:"avgLossPercent"` // nil when there are no losers
	Gainers            []EnrichedQuote `json:"gainers"`
	Losers             []EnrichedQuote `json:"losers"`
	Unchanged          int             `json:"unchanged"`
	RateLimitRemaining int64           `json:"rateLimitRemaining"`
	RateLimitReset     int64           `json:"rateLimitReset"`
	ResetSelection     ResetRule       `json:"resetSelection"`
	GeneratedAt        time.Time       `json:"generatedAt"`
}

// Total returns the batch size the result was computed from.
func (r *AggregateResult) Total() int {
	return len(r.Gainers) + len(r.Losers) + r.Unchanged
}
