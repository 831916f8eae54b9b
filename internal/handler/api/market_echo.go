package api

import (
	"context"
	"errors"
	"time"

	models "GigaStonks/internal/domain/models"
	"GigaStonks/internal/service/alphavantage"
	"GigaStonks/internal/service/finnhub"
	apimetrics "GigaStonks/internal/service/metrics"
	"GigaStonks/internal/usecase"
	xhttp "GigaStonks/pkg/http"
	xlogger "GigaStonks/pkg/logger"
	xutil "GigaStonks/pkg/util"

	"github.com/labstack/echo/v4"
)

// MarketProvider is what the news, profile, social and market-hours endpoints need.
type MarketProvider interface {
	MarketNews(ctx context.Context, category string) ([]models.NewsArticle, error)
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsArticle, error)
	CompanyProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error)
	SocialSentiment(ctx context.Context, symbol string, from time.Time) (*models.SocialSentiment, error)
	MarketStatus(ctx context.Context) ([]models.MarketStatus, error)
}

// MarketEchoHandler proxies provider news and company data.
type MarketEchoHandler struct {
	logger *xlogger.Logger
	market MarketProvider
}

func NewMarketEchoHandler(logger *xlogger.Logger, market MarketProvider) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, market: market}
}

// Mount registers the market data routes on g.
func (h *MarketEchoHandler) Mount(g *echo.Group) {
	g.GET("/market-news", h.MarketNews)
	g.GET("/company-news", h.CompanyNews)
	g.GET("/company-profile/:symbol", h.CompanyProfile)
	g.GET("/social-sentiment", h.SocialSentiment)
	g.GET("/market-status", h.MarketStatus)
}

func (h *MarketEchoHandler) MarketNews(c echo.Context) error {
	defer observe("market_news", time.Now())
	req := &models.MarketNewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	news, err := h.market.MarketNews(c.Request().Context(), req.Category)
	if err != nil {
		return h.upstreamError(c, "market_news", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=60")
	return xhttp.SuccessResponse(c, news)
}

func (h *MarketEchoHandler) CompanyNews(c echo.Context) error {
	defer observe("company_news", time.Now())
	req := &models.CompanyNewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var from, to time.Time
	if req.TimeFrom != "" {
		t, ok := xutil.ParseTime(req.TimeFrom)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("time_from '%s' is not a date (YYYY-MM-DD)", req.TimeFrom))
		}
		from = t
	}
	if req.TimeTo != "" {
		t, ok := xutil.ParseTime(req.TimeTo)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("time_to '%s' is not a date (YYYY-MM-DD)", req.TimeTo))
		}
		to = t
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("time_from must not be after time_to"))
	}

	news, err := h.market.CompanyNews(c.Request().Context(), req.Symbol, from, to)
	if err != nil {
		return h.upstreamError(c, "company_news", err)
	}
	return xhttp.SuccessResponse(c, news)
}

func (h *MarketEchoHandler) CompanyProfile(c echo.Context) error {
	defer observe("company_profile", time.Now())
	req := &models.CompanyProfileRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.market.CompanyProfile(c.Request().Context(), req.Symbol)
	if err != nil {
		if errors.Is(err, finnhub.ErrNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no profile for '%s'", req.Symbol))
		}
		return h.upstreamError(c, "company_profile", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, p)
}

func (h *MarketEchoHandler) SocialSentiment(c echo.Context) error {
	defer observe("social_sentiment", time.Now())
	req := &models.SocialSentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var from time.Time
	if req.TimeFrom != "" {
		t, ok := xutil.ParseTime(req.TimeFrom)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("time_from '%s' is not a date (YYYY-MM-DD)", req.TimeFrom))
		}
		from = t
	}

	s, err := h.market.SocialSentiment(c.Request().Context(), req.Symbol, from)
	if err != nil {
		return h.upstreamError(c, "social_sentiment", err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *MarketEchoHandler) MarketStatus(c echo.Context) error {
	defer observe("market_status", time.Now())
	markets, err := h.market.MarketStatus(c.Request().Context())
	if err != nil {
		if errors.Is(err, alphavantage.ErrNoAPIKey) || errors.Is(err, usecase.ErrMarketStatusUnavailable) {
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("market status is not configured"))
		}
		return h.upstreamError(c, "market_status", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=60")
	return xhttp.SuccessResponse(c, markets)
}

func (h *MarketEchoHandler) upstreamError(c echo.Context, endpoint string, err error) error {
	apimetrics.APIErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error("market data upstream error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("market data provider unavailable").WithError(err))
}

func observe(endpoint string, start time.Time) {
	apimetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
