package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *usecase.AdminUserUsecase
}

func NewAdminUserHandler(uc *usecase.AdminUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

type UserRoleUpdateRequest struct {
	Role string `json:"role"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	// ★ /admin 配下は全部「JWT必須 + ADMIN限定」
	admin := e.Group("/admin", mw...)

	admin.POST("/users/:id/force-logout", h.ForceLogout)
	admin.PUT("/users/:id/role", h.UpdateRole)
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	idStr := c.Param("id")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Message: "invalid user_id"})
	}

	if err := h.uc.ForceLogout(c.Request().Context(), userID); err != nil {
		return writeError(c, "admin.users.force_logout", idStr, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "sessions revoked"})
}

func (h *AdminUserHandler) UpdateRole(c echo.Context) error {
	idStr := c.Param("id")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Message: "invalid user_id"})
	}

	var req UserRoleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Message: "invalid body"})
	}

	if err := h.uc.SetRole(c.Request().Context(), userID, model.Role(req.Role)); err != nil {
		return writeError(c, "admin.users.update_role", idStr, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}
