package handlers

import (
	"net/http"

	"taskhub/internal/common"
	"taskhub/internal/middleware"
	"taskhub/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles login, logout and identity lookups
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout handles POST /auth/logout and revokes the presented token
func (h *AuthHandlers) Logout(c echo.Context) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return respondError(c, common.NewUnauthorizedError("authentication required"))
	}

	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /me
func (h *AuthHandlers) Me(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.authService.Me(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
