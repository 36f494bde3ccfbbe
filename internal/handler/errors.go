package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// writeError はエラーを安定したステータスに変換し、op・対象IDつきでログに残す。
// 5xx（503以外）は中身を返さない。
func writeError(c echo.Context, op string, entityID string, err error) error {
	if err == nil {
		return nil
	}
	status, body := errorBody(err)
	logError(c, op, entityID, status, err)
	return c.JSON(status, body)
}

func logError(c echo.Context, op string, entityID string, status int, err error) {
	ctx := c.Request().Context()
	attrs := []any{"op", op, "entity_id", entityID, "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", attrs...)
		return
	}
	slog.WarnContext(ctx, "request rejected", attrs...)
}

func errorBody(err error) (int, ErrorResponse) {
	status := usecase.StatusCode(err)

	if ge, ok := usecase.AsGatewayError(err); ok {
		return status, ErrorResponse{Error: "gateway error", Message: ge.Description}
	}

	ue, ok := usecase.AsError(err)
	if !ok || (status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable) {
		return status, ErrorResponse{Error: "internal error"}
	}
	return status, ErrorResponse{Error: ue.Kind.Error(), Message: ue.Message}
}
