package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs one line per request at info, or at warn for 5xx.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}
			req := c.Request()
			status := c.Response().Status
			lvl := slog.LevelInfo
			if status >= 500 {
				lvl = slog.LevelWarn
			}
			slog.Log(req.Context(), lvl, "http",
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"status", status,
				"dur", time.Since(start).Round(time.Microsecond),
				"ip", c.RealIP())
			return nil
		}
	}
}
