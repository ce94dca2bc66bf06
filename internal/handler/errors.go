package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/view"
)

// ErrorHandler renders the 404 page for unknown routes and missing records
// and the 500 page for every other failure. Other 4xx codes reuse the 500
// layout with their own status.
func ErrorHandler(fl *flash.Manager) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "An unexpected error occurred."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		ctx := c.Request().Context()
		if code >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "Request failed", "err", err, "method", c.Request().Method, "path", c.Request().URL.Path)
			if he == nil {
				msg = "An unexpected error occurred."
			}
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		page, title := "errors/500", "Server error"
		if code == http.StatusNotFound {
			page, title = "errors/404", "Not found"
		}
		if rerr := c.Render(code, page, view.Page{Title: title, Flashes: fl.Pop(c), Data: msg}); rerr != nil {
			slog.ErrorContext(ctx, "Failed to render error page", "err", rerr)
			_ = c.String(code, msg)
		}
	}
}
