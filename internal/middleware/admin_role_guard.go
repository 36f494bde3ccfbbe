package middleware

import (
	"log/slog"
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AdminGuard はAuthJWTの後に置く。ロールはストア（キャッシュ）から確認する。
func AdminGuard(guard *usecase.AdminGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			id, _ := IdentityFrom(c)
			decision, err := guard.Authorize(ctx, id)
			if err != nil {
				status := usecase.StatusCode(err)
				slog.ErrorContext(ctx, "admin authorization failed", "op", "authorize", "error", err)
				if ue, ok := usecase.AsError(err); ok && status == http.StatusServiceUnavailable {
					return c.JSON(status, errorJSON(ue.Message))
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			if !decision.Allowed {
				//USERは拒否、ADMINだけ許可
				if decision.Reason == usecase.DenyUnauthenticated {
					return c.JSON(http.StatusUnauthorized, errorJSON("log in"))
				}
				return c.JSON(http.StatusForbidden, errorJSON("admin required"))
			}

			return next(c)
		}
	}
}
