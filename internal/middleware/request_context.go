package middleware

import (
	"log/slog"
	"time"

	"storefront/internal/pkg/telemetry"

	"github.com/labstack/echo/v4"
)

// RequestContext はechoのRequestIDをcontextに載せ、1リクエスト1行のログを出す。
// echo middleware.RequestID の後に置く。
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = req.Header.Get(echo.HeaderXRequestID)
			}
			ctx := telemetry.WithRequestID(req.Context(), id)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			slog.InfoContext(ctx, "request",
				"method", req.Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
