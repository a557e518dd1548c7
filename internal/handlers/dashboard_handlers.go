package handlers

import (
	"net/http"

	"taskhub/internal/analytics"
	"taskhub/internal/common"

	"github.com/labstack/echo/v4"
)

// DashboardHandlers exposes task statistics computed on every request
type DashboardHandlers struct {
	dashboard analytics.DashboardService
}

func NewDashboardHandlers(dashboard analytics.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboard: dashboard}
}

// GetStats handles GET /dashboard/stats?tenant_id=
func (h *DashboardHandlers) GetStats(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.dashboard.TaskStats(c.Request().Context(), actor, common.ParseOptionalUUID(c.QueryParam("tenant_id")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetTenantStats handles GET /dashboard/tenant-stats (admin only)
func (h *DashboardHandlers) GetTenantStats(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.dashboard.TenantStats(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": stats,
	})
}

// GetUserTaskStats handles GET /dashboard/user-tasks/:user_id
func (h *DashboardHandlers) GetUserTaskStats(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	userID, err := pathUUID(c, "user_id")
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.dashboard.UserTaskStats(c.Request().Context(), actor, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
