package handlers

import (
	"net/http"
	"strconv"

	"taskhub/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles user-related HTTP requests
type UserHandlers struct {
	userService services.UserService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// ListUsers handles GET /users. Non-admins only ever see their own tenant.
func (h *UserHandlers) ListUsers(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req services.ListUsersRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, err)
	}
	if err := normalizePage(&req.Limit, &req.Offset); err != nil {
		return respondError(c, err)
	}

	users, err := h.userService.List(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":  users,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}

// CreateUser handles POST /users (admin only)
func (h *UserHandlers) CreateUser(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req services.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// GetUser handles GET /users/:id
func (h *UserHandlers) GetUser(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req services.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.Update(c.Request().Context(), actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id?unassign=true
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	unassign, _ := strconv.ParseBool(c.QueryParam("unassign"))
	if err := h.userService.Delete(c.Request().Context(), actor, id, services.DeleteUserOptions{Unassign: unassign}); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
