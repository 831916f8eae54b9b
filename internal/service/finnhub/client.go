package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"GigaStonks/internal/domain/models"
	drepo "GigaStonks/internal/domain/repository"
	xhttp "GigaStonks/pkg/http"
	applogger "GigaStonks/pkg/logger"
	xutil "GigaStonks/pkg/util"
)

const (
	HeaderToken              = "X-Finnhub-Token"
	HeaderRateLimitRemaining = "X-Ratelimit-Remaining"
	HeaderRateLimitReset     = "X-Ratelimit-Reset"

	// quote bodies are tiny; anything bigger is not a quote
	maxQuoteBody = 64 << 10
)

var errIncompleteQuote = errors.New("finnhub: incomplete quote payload")

// Client talks to the Finnhub REST API. It is safe for concurrent use: the
// underlying pooled HTTP client is the only shared state.
type Client struct {
	baseURL string
	token   string
	http    *xhttp.Client
	metrics drepo.Metrics
	logger  *applogger.Logger
	now     func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithMetrics records fetch outcomes.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the wall clock used for placeholder timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Finnhub REST client sharing hc across all calls.
func New(baseURL, token string, hc *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
		logger:  applogger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// quotePayload mirrors the /quote body. Pointers detect absent or null fields,
// which Finnhub sends for unknown symbols.
type quotePayload struct {
	C  *float64 `json:"c"`
	D  *float64 `json:"d"`
	DP *float64 `json:"dp"`
	H  *float64 `json:"h"`
	L  *float64 `json:"l"`
	O  *float64 `json:"o"`
	PC *float64 `json:"pc"`
	T  *int64   `json:"t"`
}

func (p *quotePayload) toRaw() (models.RawQuote, error) {
	if p.C == nil || p.D == nil || p.DP == nil || p.H == nil || p.L == nil || p.O == nil || p.PC == nil || p.T == nil {
		return models.RawQuote{}, errIncompleteQuote
	}
	return models.RawQuote{
		CurrentPrice:  *p.C,
		Delta:         *p.D,
		DeltaPercent:  *p.DP,
		High:          *p.H,
		Low:           *p.L,
		Open:          *p.O,
		PreviousClose: *p.PC,
		Timestamp:     *p.T,
	}, nil
}

// FetchQuote performs exactly one GET /quote for entry. It never fails: an
// unusable body yields a degraded placeholder that still carries the response's
// rate-limit headers, and a request that cannot be built or sent yields an
// unreachable placeholder with a zero rate limit.
func (c *Client) FetchQuote(ctx context.Context, entry models.IndexEntry) models.EnrichedQuote {
	start := time.Now()
	q := c.fetchQuote(ctx, entry)
	if c.metrics != nil {
		c.metrics.RecordFetch(q.Status)
		c.metrics.RecordLatency("quote_fetch", time.Since(start).Seconds())
		if q.Status != models.QuoteUnreachable {
			c.metrics.RecordRateLimit(q.RateLimit.Remaining)
		}
	}
	return q
}

func (c *Client) fetchQuote(ctx context.Context, entry models.IndexEntry) models.EnrichedQuote {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/quote",
		Headers:     c.headers(),
		QueryParams: map[string][]string{"symbol": {entry.Ticker}},
	})
	if err != nil {
		c.logger.Warn("quote request failed",
			applogger.String("symbol", entry.Ticker),
			applogger.Error(err),
		)
		return models.PlaceholderQuote(entry, models.RateLimitSnapshot{}, models.QuoteUnreachable, c.now())
	}
	defer resp.Body.Close()

	rl := ParseRateLimit(resp.Header)

	raw, err := decodeQuote(resp)
	if err != nil {
		c.logger.Warn("quote payload unusable",
			applogger.String("symbol", entry.Ticker),
			applogger.Int("status", resp.StatusCode),
			applogger.Error(err),
		)
		return models.PlaceholderQuote(entry, rl, models.QuoteDegraded, c.now())
	}

	return models.EnrichedQuote{
		RawQuote:    raw,
		Ticker:      entry.Ticker,
		DisplayName: entry.DisplayName,
		RateLimit:   rl,
		Status:      models.QuoteOK,
	}
}

func decodeQuote(resp *http.Response) (models.RawQuote, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxQuoteBody))
		return models.RawQuote{}, &xhttp.StatusError{Code: resp.StatusCode}
	}
	var p quotePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxQuoteBody)).Decode(&p); err != nil {
		return models.RawQuote{}, fmt.Errorf("decode quote: %w", err)
	}
	return p.toRaw()
}

// ParseRateLimit reads the rate-limit headers; a missing or non-integer value becomes 0.
func ParseRateLimit(h http.Header) models.RateLimitSnapshot {
	return models.RateLimitSnapshot{
		Remaining: xutil.ParseInt64Default(h.Get(HeaderRateLimitRemaining), 0),
		ResetAt:   xutil.ParseInt64Default(h.Get(HeaderRateLimitReset), 0),
	}
}

// MarketNews returns the latest general market headlines for category.
func (c *Client) MarketNews(ctx context.Context, category string) ([]models.NewsArticle, error) {
	var out []models.NewsArticle
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/news",
		Headers:     c.headers(),
		QueryParams: map[string][]string{"category": {category}},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("finnhub market news: %w", err)
	}
	return out, nil
}

// CompanyNews returns headlines for symbol published between from and to (inclusive days).
func (c *Client) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsArticle, error) {
	var out []models.NewsArticle
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/company-news",
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"from":   {xutil.FormatDate(from)},
			"to":     {xutil.FormatDate(to)},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("finnhub company news %s: %w", symbol, err)
	}
	return out, nil
}

// CompanyProfile returns the profile for symbol. Finnhub answers an unknown
// symbol with an empty object, reported here as ErrNotFound.
func (c *Client) CompanyProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	var out models.CompanyProfile
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/stock/profile2",
		Headers:     c.headers(),
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("finnhub company profile %s: %w", symbol, err)
	}
	if out.Ticker == "" && out.Name == "" {
		return nil, fmt.Errorf("company profile %s: %w", symbol, ErrNotFound)
	}
	return &out, nil
}

// SocialSentiment returns reddit and twitter mention buckets for symbol from
// the given day onwards.
func (c *Client) SocialSentiment(ctx context.Context, symbol string, from time.Time) (*models.SocialSentiment, error) {
	var out models.SocialSentiment
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/stock/social-sentiment",
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"from":   {xutil.FormatDate(from)},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("finnhub social sentiment %s: %w", symbol, err)
	}
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	if out.Reddit == nil {
		out.Reddit = []models.SocialSentimentEntry{}
	}
	if out.Twitter == nil {
		out.Twitter = []models.SocialSentimentEntry{}
	}
	return &out, nil
}

// ErrNotFound is returned when the provider has no data for a symbol.
var ErrNotFound = errors.New("finnhub: not found")

func (c *Client) headers() map[string]string {
	return map[string]string{
		HeaderToken: c.token,
		"Accept":    "application/json",
	}
}

var (
	_ drepo.QuoteFetcher = (*Client)(nil)
	_ drepo.MarketData   = (*Client)(nil)
)
