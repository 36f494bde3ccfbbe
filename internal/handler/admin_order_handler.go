package handler

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

// 省略したフィールドは変更しない。空文字はnullに戻す。
type AdminOrderUpdateRequest struct {
	Status           *string `json:"status"`
	TrackingNumber   *string `json:"trackingNumber"`
	ShippingProvider *string `json:"shippingProvider"`
	AdminNotes       *string `json:"adminNotes"`
}

type OrderListResponse struct {
	Orders []model.Order `json:"orders"`
}

type OrderResponse struct {
	Order model.Order `json:"order"`
}

type AuditLogListResponse struct {
	AuditLogs []model.AuditLog `json:"auditLogs"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	admin := e.Group("/admin", mw...)

	admin.GET("/orders", h.list)
	admin.GET("/orders/:id", h.detail)
	admin.PUT("/orders/:id", h.update)
	admin.GET("/orders/:id/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	orders, err := h.uc.List(c.Request().Context(), usecase.AdminOrderListInput{
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("paymentStatus"),
	})
	if err != nil {
		return writeError(c, "admin.orders.list", "", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, OrderListResponse{Orders: orders})
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	id := c.Param("id")

	o, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, "admin.orders.get", id, err)
	}
	return c.JSON(http.StatusOK, OrderResponse{Order: o})
}

func (h *AdminOrderHandler) update(c echo.Context) error {
	id := c.Param("id")

	var req AdminOrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Message: "invalid body"})
	}

	var ifVersion *int64
	if v := strings.Trim(c.Request().Header.Get("If-Match"), `" `); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Message: "invalid If-Match"})
		}
		ifVersion = &n
	}

	// ★操作した管理者ID（監査ログ用）
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "log in"})
	}

	o, err := h.uc.Update(c.Request().Context(), identity.UserID, id, usecase.AdminUpdateOrderInput{
		Status:           req.Status,
		TrackingNumber:   req.TrackingNumber,
		ShippingProvider: req.ShippingProvider,
		AdminNotes:       req.AdminNotes,
		IfVersion:        ifVersion,
	})
	if err != nil {
		return writeError(c, "admin.orders.update", id, err)
	}

	c.Response().Header().Set("ETag", `"`+strconv.FormatInt(o.Version, 10)+`"`)
	return c.JSON(http.StatusOK, OrderResponse{Order: o})
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	id := c.Param("id")

	limit := repository.DefaultAuditLogLimit
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Message: "invalid limit"})
		}
		limit = l
	}

	logs, err := h.uc.AuditLogs(c.Request().Context(), id, limit)
	if err != nil {
		return writeError(c, "admin.orders.audit_logs", id, err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return c.JSON(http.StatusOK, AuditLogListResponse{AuditLogs: logs})
}
