package handlers

import (
	"net/http"

	"taskhub/internal/models"
	"taskhub/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService      services.TenantService
	customFieldService services.CustomFieldService
	exportService      services.ExportService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService, customFieldService services.CustomFieldService, exportService services.ExportService) *TenantHandlers {
	return &TenantHandlers{
		tenantService:      tenantService,
		customFieldService: customFieldService,
		exportService:      exportService,
	}
}

// ListTenants handles GET /tenants (admin only)
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req services.ListTenantsRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, err)
	}
	if err := normalizePage(&req.Limit, &req.Offset); err != nil {
		return respondError(c, err)
	}

	tenants, err := h.tenantService.List(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}

// CreateTenant handles POST /tenants (admin only)
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req services.CreateTenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	tenant, err := h.tenantService.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

// GetTenant handles GET /tenants/:id
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	tenant, err := h.tenantService.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant handles PUT /tenants/:id (admin only)
func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req services.UpdateTenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	tenant, err := h.tenantService.Update(c.Request().Context(), actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// DeleteTenant handles DELETE /tenants/:id. Tenants are deactivated, never removed.
func (h *TenantHandlers) DeleteTenant(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.tenantService.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetCustomFieldsRequest is the body of POST /tenants/:id/custom-fields
type SetCustomFieldsRequest struct {
	CustomFieldsConfig []models.CustomFieldDefinition `json:"custom_fields_config"`
}

// SetCustomFields replaces the tenant's custom field schema (admin only)
func (h *TenantHandlers) SetCustomFields(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req SetCustomFieldsRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, err)
	}

	schema, err := h.customFieldService.SetSchema(c.Request().Context(), actor, id, req.CustomFieldsConfig)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenant_id":            id,
		"custom_fields_config": schema,
	})
}

// GetCustomFields returns the tenant's custom field schema
func (h *TenantHandlers) GetCustomFields(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	schema, err := h.customFieldService.GetSchema(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenant_id":            id,
		"custom_fields_config": schema,
	})
}

// ValidateCustomFieldsRequest is the body of POST /tenants/:id/custom-fields/validate
type ValidateCustomFieldsRequest struct {
	CustomFields map[string]interface{} `json:"custom_fields"`
	Partial      bool                   `json:"partial"`
}

// ValidateCustomFields dry-runs a custom field payload against the tenant schema
func (h *TenantHandlers) ValidateCustomFields(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req ValidateCustomFieldsRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, err)
	}

	values, err := h.customFieldService.ValidateValues(c.Request().Context(), actor, id, req.CustomFields, !req.Partial)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"valid":         true,
		"custom_fields": values,
	})
}

// ExportTenant writes a tenant snapshot to object storage (admin only)
func (h *TenantHandlers) ExportTenant(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.exportService.ExportTenant(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}
