package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIPrefix is the versioned root of every JSON endpoint.
const APIPrefix = "/api/v1"

const landingPage = `<!DOCTYPE html>
<html>
<head>
    <meta name="color-scheme" content="dark">
    <title>Giga Stonks API</title>
    <style>body { font-family: Georgia, sans-serif; }</style>
</head>
<body>
    <h1>Giga Stonks API</h1>
</body>
</html>`

// Mounter registers routes on a group.
type Mounter interface {
	Mount(g *echo.Group)
}

// Router mounts every API handler plus the landing page and the catch-all.
type Router struct {
	mounts     []Mounter
	middleware []echo.MiddlewareFunc
}

// NewRouter composes handlers; mw applies to the API group only.
func NewRouter(quotes *QuotesEchoHandler, market *MarketEchoHandler, mw ...echo.MiddlewareFunc) *Router {
	return &Router{mounts: []Mounter{quotes, market}, middleware: mw}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/", Landing)
	e.RouteNotFound("/*", NoRoute)

	g := e.Group(APIPrefix, r.middleware...)
	g.RouteNotFound("/*", NoRoute)
	for _, m := range r.mounts {
		m.Mount(g)
	}
}

// Landing serves the HTML index page.
func Landing(c echo.Context) error {
	return c.HTML(http.StatusOK, landingPage)
}

// NoRoute answers any unknown path.
func NoRoute(c echo.Context) error {
	return c.String(http.StatusNotFound, fmt.Sprintf("No route for %s", c.Request().RequestURI))
}
