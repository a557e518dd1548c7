package services

import (
	"context"
	"errors"
	"strings"

	"taskhub/internal/access"
	"taskhub/internal/common"
	"taskhub/internal/metrics"
	"taskhub/internal/models"
	"taskhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TenantService interface {
	Create(ctx context.Context, actor access.AuthContext, req *CreateTenantRequest) (*models.Tenant, error)
	Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, actor access.AuthContext, req *ListTenantsRequest) ([]*models.Tenant, error)
	Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error)
	Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID) error
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	policy     *access.Policy
	logger     *zap.Logger
}

func NewTenantService(tenantRepo repositories.TenantRepository, policy *access.Policy, logger *zap.Logger) TenantService {
	return &tenantService{tenantRepo: tenantRepo, policy: policy, logger: logger}
}

type CreateTenantRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	NIT         *string `json:"nit" validate:"omitempty,max=50"`
	Description *string `json:"description"`
}

type UpdateTenantRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	NIT         *string `json:"nit" validate:"omitempty,max=50"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type ListTenantsRequest struct {
	ActiveOnly bool `query:"active_only"`
	Limit      int  `query:"limit"`
	Offset     int  `query:"offset"`
}

func (s *tenantService) Create(ctx context.Context, actor access.AuthContext, req *CreateTenantRequest) (*models.Tenant, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewValidationError("", "name is required", map[string]string{"name": "name is required"})
	}
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:                 uuid.New(),
		Name:               name,
		NIT:                common.NilIfBlank(req.NIT),
		Description:        common.NilIfBlank(req.Description),
		IsActive:           true,
		CustomFieldsConfig: models.CustomFieldList{},
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, tenantNameConflict()
		}
		return nil, wrapf(err, "create tenant")
	}

	metrics.RecordOperation("tenant", "create")
	s.logger.Info("tenant created", zap.String("tenant_id", tenant.ID.String()), zap.String("actor_id", actor.UserID.String()))
	return tenant, nil
}

// Get is open to administrators and to members of the tenant itself.
func (s *tenantService) Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.Tenant, error) {
	if err := s.policy.CheckTenantAccess(actor, &id, "Tenant"); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Tenant")
	}
	return tenant, nil
}

func (s *tenantService) List(ctx context.Context, actor access.AuthContext, req *ListTenantsRequest) ([]*models.Tenant, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return nil, common.NewValidationError("", err.Error(), nil)
	}
	tenants, err := s.tenantRepo.List(ctx, req.ActiveOnly, limit, offset)
	if err != nil {
		return nil, wrapf(err, "list tenants")
	}
	return tenants, nil
}

func (s *tenantService) Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	existing, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Tenant")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, common.NewValidationError("", "name cannot be empty", map[string]string{"name": "name cannot be empty"})
		}
		if name != existing.Name {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
		}
		existing.Name = name
	}
	if req.NIT != nil {
		existing.NIT = common.NilIfBlank(req.NIT)
	}
	if req.Description != nil {
		existing.Description = common.NilIfBlank(req.Description)
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.tenantRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, tenantNameConflict()
		}
		return nil, wrapf(notFoundAs(err, "Tenant"), "update tenant")
	}

	metrics.RecordOperation("tenant", "update")
	return existing, nil
}

// Delete deactivates the tenant. Users and tasks are left untouched.
func (s *tenantService) Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID) error {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.tenantRepo.SetActive(ctx, id, false); err != nil {
		return wrapf(notFoundAs(err, "Tenant"), "deactivate tenant")
	}

	metrics.RecordOperation("tenant", "deactivate")
	s.logger.Info("tenant deactivated", zap.String("tenant_id", id.String()), zap.String("actor_id", actor.UserID.String()))
	return nil
}

func (s *tenantService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.tenantRepo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return tenantNameConflict()
	case err == nil, errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return wrapf(err, "check tenant name")
	}
}

func tenantNameConflict() error {
	return common.NewConflictError("TENANT_NAME_TAKEN", "a tenant with this name already exists")
}
