package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"GigaStonks/internal/domain/models"
	xhttp "GigaStonks/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1700000000, 0)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/", "secret", xhttp.NewClient(xhttp.WithTimeout(2*time.Second)),
		WithClock(func() time.Time { return fixedNow }))
	return c, srv
}

var aapl = models.IndexEntry{Ticker: "AAPL", DisplayName: "Apple Inc."}

func TestFetchQuoteSuccess(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "secret", r.Header.Get(HeaderToken))
		assert.Empty(t, r.URL.Query().Get("token"))

		w.Header().Set(HeaderRateLimitRemaining, "59")
		w.Header().Set(HeaderRateLimitReset, "1700000060")
		_, _ = w.Write([]byte(`{"c":190.5,"d":1.5,"dp":0.79,"h":191,"l":188,"o":189,"pc":189,"t":1699999990}`))
	})

	q := c.FetchQuote(context.Background(), aapl)

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, models.QuoteOK, q.Status)
	assert.Equal(t, "AAPL", q.Ticker)
	assert.Equal(t, "Apple Inc.", q.DisplayName)
	assert.Equal(t, 190.5, q.CurrentPrice)
	assert.Equal(t, 0.79, q.DeltaPercent)
	assert.Equal(t, int64(1699999990), q.Timestamp)
	assert.Equal(t, models.RateLimitSnapshot{Remaining: 59, ResetAt: 1700000060}, q.RateLimit)
}

func TestFetchQuoteMalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRateLimitRemaining, "12")
		w.Header().Set(HeaderRateLimitReset, "1700000100")
		_, _ = w.Write([]byte(`not json`))
	})

	q := c.FetchQuote(context.Background(), aapl)

	assert.Equal(t, models.QuoteDegraded, q.Status)
	assert.Equal(t, "AAPL", q.Ticker)
	assert.Equal(t, "Apple Inc.", q.DisplayName)
	assert.Zero(t, q.CurrentPrice)
	assert.Zero(t, q.DeltaPercent)
	assert.Equal(t, fixedNow.Unix(), q.Timestamp)
	assert.Equal(t, models.RateLimitSnapshot{Remaining: 12, ResetAt: 1700000100}, q.RateLimit)
}

func TestFetchQuoteNullFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	})

	q := c.FetchQuote(context.Background(), aapl)
	assert.Equal(t, models.QuoteDegraded, q.Status)
	assert.Equal(t, fixedNow.Unix(), q.Timestamp)
}

func TestFetchQuoteMissingHeaders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRateLimitRemaining, "lots")
		_, _ = w.Write([]byte(`{"c":1,"d":0,"dp":0,"h":1,"l":1,"o":1,"pc":1,"t":5}`))
	})

	q := c.FetchQuote(context.Background(), aapl)
	assert.Equal(t, models.QuoteOK, q.Status)
	assert.Equal(t, models.RateLimitSnapshot{}, q.RateLimit)
}

func TestFetchQuoteErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRateLimitRemaining, "0")
		w.Header().Set(HeaderRateLimitReset, "1700000200")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"API limit reached"}`))
	})

	q := c.FetchQuote(context.Background(), aapl)
	assert.Equal(t, models.QuoteDegraded, q.Status)
	assert.Equal(t, int64(1700000200), q.RateLimit.ResetAt)
}

func TestFetchQuoteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, "secret", xhttp.NewClient(xhttp.WithTimeout(time.Second)),
		WithClock(func() time.Time { return fixedNow }))

	q := c.FetchQuote(context.Background(), aapl)
	assert.Equal(t, models.QuoteUnreachable, q.Status)
	assert.Equal(t, "AAPL", q.Ticker)
	assert.Equal(t, models.RateLimitSnapshot{}, q.RateLimit)
	assert.Equal(t, fixedNow.Unix(), q.Timestamp)
}

func TestFetchQuoteCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := c.FetchQuote(ctx, aapl)
	assert.Equal(t, models.QuoteUnreachable, q.Status)
}

func TestParseRateLimit(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderRateLimitRemaining, " 7 ")
	h.Set(HeaderRateLimitReset, "")
	assert.Equal(t, models.RateLimitSnapshot{Remaining: 7}, ParseRateLimit(h))
}

func TestMarketNews(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "crypto", r.URL.Query().Get("category"))
		assert.Equal(t, "secret", r.Header.Get(HeaderToken))
		_, _ = w.Write([]byte(`[{"id":1,"category":"crypto","headline":"BTC up","source":"x","url":"https://x"}]`))
	})

	news, err := c.MarketNews(context.Background(), "crypto")
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "BTC up", news[0].Headline)
}

func TestCompanyNews(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "MSFT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-01-08", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`[]`))
	})

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	news, err := c.CompanyNews(context.Background(), "MSFT", from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, news)
}

func TestCompanyNewsUpstreamError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.CompanyNews(context.Background(), "MSFT", time.Now(), time.Now())
	require.Error(t, err)
	var se *xhttp.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
}

func TestCompanyProfile(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/profile2", r.URL.Path)
		if r.URL.Query().Get("symbol") == "NOPE" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"Apple Inc","ticker":"AAPL","exchange":"NASDAQ","marketCapitalization":3000000}`))
	})

	p, err := c.CompanyProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", p.Name)
	assert.Equal(t, 3000000.0, p.MarketCap)

	_, err = c.CompanyProfile(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSocialSentiment(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/social-sentiment", r.URL.Path)
		assert.Equal(t, "GME", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("from"))
		assert.Equal(t, "secret", r.Header.Get(HeaderToken))
		_, _ = w.Write([]byte(`{"symbol":"GME","reddit":[{"atTime":"2024-02-01 10:00:00","mention":12,"positiveMention":8,"negativeMention":2,"positiveScore":0.71,"negativeScore":-0.4,"score":0.55}]}`))
	})

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	s, err := c.SocialSentiment(context.Background(), "GME", from)
	require.NoError(t, err)
	assert.Equal(t, "GME", s.Symbol)
	require.Len(t, s.Reddit, 1)
	assert.Equal(t, 12, s.Reddit[0].Mention)
	assert.Equal(t, 8, s.Reddit[0].PositiveMention)
	assert.Equal(t, 0.55, s.Reddit[0].Score)
	assert.NotNil(t, s.Twitter)
	assert.Empty(t, s.Twitter)
}

func TestSocialSentimentUpstreamError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.SocialSentiment(context.Background(), "GME", time.Now())
	var se *xhttp.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}
