package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// チェックアウト（ゲスト購入可）
type OrderHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewOrderHandler(uc *usecase.CheckoutUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderItemRequest struct {
	ProductID  string `json:"productId"`
	Title      string `json:"title"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int64  `json:"quantity"`
}

type OrderCreateRequest struct {
	Customer model.Customer     `json:"customer"`
	Items    []OrderItemRequest `json:"items"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/orders", h.create)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Message: "invalid body"})
	}

	items := make([]usecase.CheckoutItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CheckoutItemInput{
			ProductID:  it.ProductID,
			Title:      it.Title,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
		})
	}

	o, err := h.uc.PlaceOrder(c.Request().Context(), usecase.PlaceOrderInput{
		Customer: req.Customer,
		Items:    items,
	})
	if err != nil {
		return writeError(c, "orders.create", "", err)
	}
	return c.JSON(http.StatusCreated, OrderResponse{Order: o})
}
