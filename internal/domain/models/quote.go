package models

import "time"

// QuoteStatus classifies how an EnrichedQuote was produced.
type QuoteStatus string

const (
	QuoteOK          QuoteStatus = "ok"          // upstream payload decoded
	QuoteDegraded    QuoteStatus = "degraded"    // response received, body unusable
	QuoteUnreachable QuoteStatus = "unreachable" // request could not be built or executed
	QuoteMissing     QuoteStatus = "missing"     // fetch task itself failed
)

// RawQuote is the upstream quote payload.
type RawQuote struct {
	CurrentPrice  float64 `json:"currentPrice"`
	Delta         float64 `json:"delta"`
	DeltaPercent  float64 `json:"deltaPercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previousClose"`
	Timestamp     int64   `json:"timestamp"` // provider unit (unix seconds)
}

// RateLimitSnapshot is read from the X-Ratelimit-* response headers.
// A missing or unparseable header is reported as 0.
type RateLimitSnapshot struct {
	Remaining int64 `json:"remaining"`
	ResetAt   int64 `json:"reset"`
}

// EnrichedQuote is one ticker's quote plus identity and rate-limit telemetry.
type EnrichedQuote struct {
	RawQuote
	Ticker      string            `json:"symbol"`
	DisplayName string            `json:"name"`
	RateLimit   RateLimitSnapshot `json:"rateLimit"`
	Status      QuoteStatus       `json:"status"`
}

// PlaceholderQuote is the zero-valued quote substituted when a fetch fails.
// The entry identity is kept; prices are zero and the timestamp is now.
func PlaceholderQuote(entry IndexEntry, rl RateLimitSnapshot, status QuoteStatus, now time.Time) EnrichedQuote {
	return EnrichedQuote{
		RawQuote:    RawQuote{Timestamp: now.Unix()},
		Ticker:      entry.Ticker,
		DisplayName: entry.DisplayName,
		RateLimit:   rl,
		Status:      status,
	}
}

// MissingQuote is the sentinel for a fetch task that died before producing a result.
func MissingQuote(now time.Time) EnrichedQuote {
	return PlaceholderQuote(IndexEntry{}, RateLimitSnapshot{}, QuoteMissing, now)
}
