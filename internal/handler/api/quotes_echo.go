package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	models "GigaStonks/internal/domain/models"
	apimetrics "GigaStonks/internal/service/metrics"
	"GigaStonks/internal/usecase"
	xhttp "GigaStonks/pkg/http"
	xlogger "GigaStonks/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// QuoteProvider is what the quotes endpoints need from the usecase layer.
type QuoteProvider interface {
	IndexQuotes(ctx context.Context, index string) (*models.AggregateResult, error)
	Indices() []string
}

// QuotesEchoHandler serves index aggregates, one-shot and streamed.
type QuotesEchoHandler struct {
	logger   *xlogger.Logger
	quotes   QuoteProvider
	upgrader websocket.Upgrader
}

func NewQuotesEchoHandler(logger *xlogger.Logger, quotes QuoteProvider) *QuotesEchoHandler {
	return &QuotesEchoHandler{
		logger: logger,
		quotes: quotes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Mount registers the quote routes on g.
func (h *QuotesEchoHandler) Mount(g *echo.Group) {
	g.GET("/quotes/:index", h.Quotes)
	g.GET("/quotes/:index/stream", h.Stream)
}

// Quotes returns the aggregate for one index.
func (h *QuotesEchoHandler) Quotes(c echo.Context) error {
	start := time.Now()
	defer func() { apimetrics.APILatency.WithLabelValues("quotes").Observe(time.Since(start).Seconds()) }()

	req := &models.QuotesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.quotes.IndexQuotes(c.Request().Context(), req.Index)
	if err != nil {
		apimetrics.APIErrors.WithLabelValues("quotes").Inc()
		return xhttp.AppErrorResponse(c, h.mapError(req.Index, err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *QuotesEchoHandler) mapError(index string, err error) error {
	if errors.Is(err, usecase.ErrUnknownIndex) {
		return xhttp.BadRequestErrorf("Unknown index '%s'. Expected one of: %s", index, strings.Join(h.quotes.Indices(), ", ")).
			WithParam("index", index).
			WithParam("options", h.quotes.Indices()).
			WithError(err)
	}
	h.logger.Error("quotes usecase error", xlogger.String("index", index), xlogger.Error(err))
	return xhttp.InternalError("failed to aggregate quotes").WithError(err)
}
