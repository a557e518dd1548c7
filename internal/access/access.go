// Package access decides what an authenticated caller may see and change.
// Every service operation receives the caller's AuthContext explicitly and
// asks Policy for the tenant scope to apply.
package access

import (
	"context"
	"fmt"
	"strings"

	"taskhub/internal/common"
	"taskhub/internal/metrics"
	"taskhub/internal/models"

	"github.com/google/uuid"
)

// AuthContext identifies the caller of an operation.
type AuthContext struct {
	UserID   uuid.UUID
	Role     models.Role
	TenantID *uuid.UUID
}

func (a AuthContext) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// SameTenant reports whether the caller belongs to tenantID.
func (a AuthContext) SameTenant(tenantID *uuid.UUID) bool {
	return a.TenantID != nil && tenantID != nil && *a.TenantID == *tenantID
}

// DenialMode selects how out-of-scope access is reported.
type DenialMode string

const (
	DenyForbidden DenialMode = "forbidden"
	DenyNotFound  DenialMode = "not_found"
)

func ParseDenialMode(s string) (DenialMode, error) {
	switch DenialMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DenyForbidden:
		return DenyForbidden, nil
	case DenyNotFound:
		return DenyNotFound, nil
	}
	return "", fmt.Errorf("unknown access denial mode %q", s)
}

type Policy struct {
	mode DenialMode
}

func NewPolicy(mode DenialMode) *Policy {
	if mode == "" {
		mode = DenyForbidden
	}
	return &Policy{mode: mode}
}

func (p *Policy) Mode() DenialMode {
	return p.mode
}

// ScopeTenant returns the tenant filter a read must use. Admins get what they
// asked for (nil means every tenant); everyone else is pinned to their own tenant
// regardless of the request.
func (p *Policy) ScopeTenant(actor AuthContext, requested *uuid.UUID) (*uuid.UUID, error) {
	if actor.IsAdmin() {
		return requested, nil
	}
	if actor.TenantID == nil {
		return nil, common.NewForbiddenError("user is not assigned to a tenant")
	}
	tenantID := *actor.TenantID
	return &tenantID, nil
}

// CheckTenantAccess fails when a non-admin touches a resource owned by another tenant.
func (p *Policy) CheckTenantAccess(actor AuthContext, resourceTenant *uuid.UUID, resource string) error {
	if actor.IsAdmin() || actor.SameTenant(resourceTenant) {
		return nil
	}
	return p.Deny(resource)
}

// RequireAdmin guards operations reserved to administrators.
func (p *Policy) RequireAdmin(actor AuthContext) error {
	if actor.IsAdmin() {
		return nil
	}
	metrics.RecordAccessDenied("admin")
	return common.NewForbiddenError("administrator role required")
}

// Deny builds the configured out-of-scope error for resource.
func (p *Policy) Deny(resource string) error {
	metrics.RecordAccessDenied(strings.ToLower(resource))
	if p.mode == DenyNotFound {
		return common.NewNotFoundError(resource)
	}
	return common.NewForbiddenError(fmt.Sprintf("access to this %s is not allowed", strings.ToLower(resource)))
}

type contextKey string

const authContextKey contextKey = "auth_context"

func WithAuthContext(ctx context.Context, actor AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, actor)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	actor, ok := ctx.Value(authContextKey).(AuthContext)
	return actor, ok
}
