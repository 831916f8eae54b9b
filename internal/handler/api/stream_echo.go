package api

import (
	"context"
	"slices"
	"time"

	models "GigaStonks/internal/domain/models"
	apimetrics "GigaStonks/internal/service/metrics"
	"GigaStonks/internal/usecase"
	xhttp "GigaStonks/pkg/http"
	xlogger "GigaStonks/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

// streamFrame is one message pushed to a stream subscriber.
type streamFrame struct {
	Type  string                  `json:"type"` // snapshot | error
	Data  *models.AggregateResult `json:"data,omitempty"`
	Error string                  `json:"error,omitempty"`
}

// Stream upgrades to a websocket and pushes the index aggregate every
// interval seconds until the client goes away.
func (h *QuotesEchoHandler) Stream(c echo.Context) error {
	req := &models.QuotesStreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// reject before upgrading so the client still gets a JSON error
	if !slices.Contains(h.quotes.Indices(), req.Index) {
		return xhttp.AppErrorResponse(c, h.mapError(req.Index, &usecase.UnknownIndexError{Index: req.Index, Known: h.quotes.Indices()}))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("stream upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	apimetrics.StreamSessions.Inc()
	defer apimetrics.StreamSessions.Dec()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go h.drain(conn, cancel)

	log := h.logger.With(xlogger.String("index", req.Index), xlogger.Int("interval", req.Interval))
	log.Info("quote stream opened")
	defer log.Info("quote stream closed")

	tick := time.NewTicker(time.Duration(req.Interval) * time.Second)
	defer tick.Stop()
	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	if err := h.push(ctx, conn, req.Index); err != nil {
		log.Debug("stream write failed", xlogger.Error(err))
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-tick.C:
			if err := h.push(ctx, conn, req.Index); err != nil {
				log.Debug("stream write failed", xlogger.Error(err))
				return nil
			}
		}
	}
}

func (h *QuotesEchoHandler) push(ctx context.Context, conn *websocket.Conn, index string) error {
	frame := streamFrame{Type: "snapshot"}
	res, err := h.quotes.IndexQuotes(ctx, index)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		apimetrics.APIErrors.WithLabelValues("quotes_stream").Inc()
		frame = streamFrame{Type: "error", Error: err.Error()}
	} else {
		frame.Data = res
	}
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(frame)
}

// drain reads until the peer closes; control frames are handled by gorilla.
func (h *QuotesEchoHandler) drain(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
