package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type CreatePaymentOrderRequest struct {
	AmountMinorUnits *float64          `json:"amountMinorUnits"`
	Amount           *float64          `json:"amount"`
	Currency         string            `json:"currency"`
	Receipt          string            `json:"receipt"`
	Notes            map[string]string `json:"notes"`
	OrderID          string            `json:"orderId"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type VerifyPaymentResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/payment")
	g.POST("/create-order", h.createOrder)
	g.POST("/verify", h.verify)
}

func (h *PaymentHandler) createOrder(c echo.Context) error {
	var req CreatePaymentOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Message: "invalid body"})
	}

	amount := req.AmountMinorUnits
	if amount == nil {
		amount = req.Amount
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), usecase.CreatePaymentOrderInput{
		Amount:   amount,
		Currency: currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
		OrderID:  req.OrderID,
	})
	if err != nil {
		return writeError(c, "payment.create_order", req.OrderID, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, VerifyPaymentResponse{Error: "invalid body"})
	}

	err := h.uc.VerifyPayment(c.Request().Context(), usecase.VerifyPaymentInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		// 署名まわりの詳細は返さない
		status, body := errorBody(err)
		logError(c, "payment.verify", req.OrderID, status, err)
		return c.JSON(status, VerifyPaymentResponse{Error: verifyMessage(body)})
	}

	return c.JSON(http.StatusOK, VerifyPaymentResponse{OK: true})
}

func verifyMessage(body ErrorResponse) string {
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
