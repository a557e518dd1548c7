package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	NIT                *string         `json:"nit,omitempty" db:"nit"`
	Description        *string         `json:"description,omitempty" db:"description"`
	IsActive           bool            `json:"is_active" db:"is_active"`
	CustomFieldsConfig CustomFieldList `json:"custom_fields_config" db:"custom_fields_config"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// TenantStats is the per-tenant row of the admin dashboard.
type TenantStats struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	UserCount  int       `json:"user_count"`
	TaskStats
}
