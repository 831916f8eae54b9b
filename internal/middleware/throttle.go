package middleware

import (
	"strconv"
	"sync/atomic"
	"time"

	"GigaStonks/internal/service/ratelimit"
	xhttp "GigaStonks/pkg/http"
	applogger "GigaStonks/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ThrottleConfig sizes the per-client token bucket.
type ThrottleConfig struct {
	Capacity     float64
	RefillPerSec float64
	// IdleTTL drops buckets of clients not seen for this long. Zero keeps them forever.
	IdleTTL time.Duration
}

// Throttle limits each client IP to cfg.Capacity burst requests refilled at
// cfg.RefillPerSec. Rejected requests get 429.
func Throttle(l *ratelimit.Limiter, cfg ThrottleConfig, logger *applogger.Logger) echo.MiddlewareFunc {
	var lastSweep atomic.Int64
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if !l.Allow(key, cfg.Capacity, cfg.RefillPerSec) {
				if logger != nil {
					logger.Warn("client throttled",
						applogger.String("remote", key),
						applogger.String("path", c.Path()),
					)
				}
				if cfg.RefillPerSec > 0 {
					c.Response().Header().Set("Retry-After", strconv.Itoa(int(1/cfg.RefillPerSec+0.5)))
				}
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests"))
			}
			if cfg.IdleTTL > 0 {
				now := time.Now().UnixNano()
				prev := lastSweep.Load()
				if now-prev > int64(cfg.IdleTTL) && lastSweep.CompareAndSwap(prev, now) {
					l.Sweep(cfg.IdleTTL)
				}
			}
			return next(c)
		}
	}
}
