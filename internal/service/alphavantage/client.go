package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"GigaStonks/internal/domain/models"
	drepo "GigaStonks/internal/domain/repository"
	xhttp "GigaStonks/pkg/http"
	applogger "GigaStonks/pkg/logger"
)

// FunctionMarketStatus is the query function for regional trading hours.
const FunctionMarketStatus = "MARKET_STATUS"

// DefaultRegions are the markets reported when no filter is configured.
var DefaultRegions = []string{"United States", "Germany"}

// ErrNoAPIKey is returned when the client was built without a key.
var ErrNoAPIKey = errors.New("alphavantage: api key not configured")

// Client talks to the Alpha Vantage query API.
type Client struct {
	baseURL string
	apiKey  string
	regions map[string]struct{}
	http    *xhttp.Client
	logger  *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithRegions limits MarketStatus to the named regions.
func WithRegions(regions []string) Option {
	return func(c *Client) {
		c.regions = make(map[string]struct{}, len(regions))
		for _, r := range regions {
			c.regions[r] = struct{}{}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates an Alpha Vantage client sharing hc.
func New(baseURL, apiKey string, hc *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
		logger:  applogger.Nop(),
	}
	WithRegions(DefaultRegions)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// marketStatusPayload is the MARKET_STATUS body. When the daily quota is
// spent Alpha Vantage answers 200 with an "Information" note instead.
type marketStatusPayload struct {
	Endpoint    string                `json:"endpoint"`
	Markets     []models.MarketStatus `json:"markets"`
	Information string                `json:"Information"`
	Note        string                `json:"Note"`
}

// MarketStatus returns the configured regions' trading state. A body that
// does not decode as a market list (quota notes, garbage) yields an empty
// list; only transport and non-2xx failures are errors.
func (c *Client) MarketStatus(ctx context.Context) ([]models.MarketStatus, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/query",
		QueryParams: map[string][]string{
			"function": {FunctionMarketStatus},
			"apikey":   {c.apiKey},
		},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage market status: %w", err)
	}

	out := []models.MarketStatus{}
	var p marketStatusPayload
	if err := json.Unmarshal(body, &p); err != nil || p.Markets == nil {
		note := p.Information
		if note == "" {
			note = p.Note
		}
		c.logger.Warn("market status body unusable",
			applogger.String("note", note),
			applogger.Bool("decoded", err == nil),
		)
		return out, nil
	}

	for _, m := range p.Markets {
		if _, ok := c.regions[m.Region]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ drepo.MarketStatusSource = (*Client)(nil)
