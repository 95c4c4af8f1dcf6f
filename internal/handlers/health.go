package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ReadinessConfig interface {
	IsReady() bool
}

// HealthLive reports alive once the process is serving requests.
func HealthLive() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "alive"})
	}
}

// HealthReady reports ready only when the webhook secret is configured and
// the store answers a round-trip.
func HealthReady(config ReadinessConfig, store MessageStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !config.IsReady() {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"detail": "not ready"})
		}
		if !store.Ping() {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"detail": "database not accessible"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	}
}
