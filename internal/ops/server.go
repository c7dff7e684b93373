// Package ops serves the operational HTTP endpoints next to the gRPC API.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewServer returns an echo instance serving /health and /metrics. GET /health?check=db
// also pings the database.
func NewServer(db Pinger, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/health", func(c echo.Context) error {
		response := map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		}
		if c.QueryParam("check") == "db" {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				response["status"] = "error"
				response["db_status"] = "error"
				return c.JSON(http.StatusServiceUnavailable, response)
			}
			response["db_status"] = "ok"
		}
		return c.JSON(http.StatusOK, response)
	})
	return e
}
