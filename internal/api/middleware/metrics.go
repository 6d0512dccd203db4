// Package middleware provides Echo middleware for flyer-price-tracker.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/flyer-price-tracker/internal/metrics"
)

// probePaths are operational endpoints hit by scrapers and orchestrators.
// They are excluded from request metrics and logged at debug level.
var probePaths = map[string]struct{}{
	"/metrics": {},
	"/healthz": {},
	"/readyz":  {},
}

// healthGauges maps probe paths to their up/down gauge.
var healthGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// unmatchedRoute labels requests that matched no route, keeping arbitrary
// URLs out of the label set.
const unmatchedRoute = "unmatched"

// Metrics returns Echo middleware that records request duration and status
// per route. Probe paths update their up/down gauge instead.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := routeOf(c)

			if isProbe(route) {
				err := next(c)
				updateHealthGauge(route, statusOf(c, err))
				return err
			}

			start := time.Now()
			err := next(c)

			status := strconv.Itoa(statusOf(c, err))
			method := c.Request().Method

			metrics.HTTPRequestDuration.
				WithLabelValues(method, route, status).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, route, status).
				Inc()

			return err
		}
	}
}

func routeOf(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	if _, ok := probePaths[c.Request().URL.Path]; ok {
		return c.Request().URL.Path
	}
	return unmatchedRoute
}

func isProbe(path string) bool {
	_, ok := probePaths[path]
	return ok
}

// statusOf returns the status that will be written for err when the
// handler returned one without committing a response.
func statusOf(c echo.Context, err error) int {
	if err != nil && !c.Response().Committed {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he.Code
		}
		return http.StatusInternalServerError
	}
	return c.Response().Status
}

func updateHealthGauge(path string, status int) {
	gauge, ok := healthGauges[path]
	if !ok {
		return
	}
	if status >= 200 && status < 300 {
		gauge.Set(1)
	} else {
		gauge.Set(0)
	}
}
