package usecase

import (
	"sort"

	"GigaStonks/internal/domain/models"
)

// Aggregator reduces one index batch into a sentiment summary. It holds no
// mutable state and is safe for concurrent use.
type Aggregator struct {
	rule models.ResetRule
}

// NewAggregator falls back to ResetLastInSubmissionOrder for an unknown rule.
func NewAggregator(rule models.ResetRule) *Aggregator {
	if !rule.Valid() {
		rule = models.ResetLastInSubmissionOrder
	}
	return &Aggregator{rule: rule}
}

// Rule returns the reset selection in effect.
func (a *Aggregator) Rule() models.ResetRule { return a.rule }

// Aggregate partitions quotes into gainers and losers, ranks them and derives
// sentiment, averages and the batch rate-limit budget. quotes must be in
// registry order; it is not modified. The result depends on quotes alone:
// Index and GeneratedAt are left for the caller to stamp.
func (a *Aggregator) Aggregate(quotes []models.EnrichedQuote) models.AggregateResult {
	res := models.AggregateResult{
		Gainers:        []models.EnrichedQuote{},
		Losers:         []models.EnrichedQuote{},
		ResetSelection: a.rule,
	}

	var gainSum, lossSum float64
	for _, q := range quotes {
		switch {
		case q.DeltaPercent > 0:
			res.Gainers = append(res.Gainers, q)
			gainSum += q.DeltaPercent
		case q.DeltaPercent < 0:
			res.Losers = append(res.Losers, q)
			lossSum += q.DeltaPercent
		default:
			res.Unchanged++
		}
	}

	sort.SliceStable(res.Gainers, func(i, j int) bool {
		return res.Gainers[i].DeltaPercent > res.Gainers[j].DeltaPercent
	})
	sort.SliceStable(res.Losers, func(i, j int) bool {
		return res.Losers[i].DeltaPercent < res.Losers[j].DeltaPercent
	})

	res.Sentiment = sentiment(len(res.Gainers), len(res.Losers), gainSum+lossSum)
	res.AvgGainPercent = mean(gainSum, len(res.Gainers))
	res.AvgLossPercent = mean(lossSum, len(res.Losers))
	res.RateLimitRemaining = minRemaining(quotes)
	res.RateLimitReset = selectReset(quotes, a.rule)
	return res
}

// sentiment compares counts. Equal counts fall back to the sign of the net
// move, so +2.0 against -1.0 reads Bullish rather than Neutral.
func sentiment(gainers, losers int, net float64) models.Sentiment {
	switch {
	case gainers > losers:
		return models.Bullish
	case losers > gainers:
		return models.Bearish
	case net > 0:
		return models.Bullish
	case net < 0:
		return models.Bearish
	default:
		return models.Neutral
	}
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}

func minRemaining(quotes []models.EnrichedQuote) int64 {
	if len(quotes) == 0 {
		return 0
	}
	m := quotes[0].RateLimit.Remaining
	for _, q := range quotes[1:] {
		if q.RateLimit.Remaining < m {
			m = q.RateLimit.Remaining
		}
	}
	return m
}

func selectReset(quotes []models.EnrichedQuote, rule models.ResetRule) int64 {
	if len(quotes) == 0 {
		return 0
	}
	if rule == models.ResetMaxAcrossBatch {
		m := quotes[0].RateLimit.ResetAt
		for _, q := range quotes[1:] {
			if q.RateLimit.ResetAt > m {
				m = q.RateLimit.ResetAt
			}
		}
		return m
	}
	return quotes[len(quotes)-1].RateLimit.ResetAt
}
