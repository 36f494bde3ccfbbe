package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, h Handlers, adminMW ...echo.MiddlewareFunc) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Payment.RegisterRoutes(e)
	h.Orders.RegisterRoutes(e)
	h.AdminOrder.RegisterRoutes(e, adminMW...)
	h.AdminUser.RegisterRoutes(e, adminMW...)
}
