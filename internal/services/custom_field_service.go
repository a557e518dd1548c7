package services

import (
	"context"

	"taskhub/internal/access"
	"taskhub/internal/customfields"
	"taskhub/internal/metrics"
	"taskhub/internal/models"
	"taskhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CustomFieldService interface {
	SetSchema(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID, defs []models.CustomFieldDefinition) (models.CustomFieldList, error)
	GetSchema(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID) (models.CustomFieldList, error)
	ValidateValues(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID, values map[string]interface{}, requireAll bool) (models.CustomFieldValues, error)
}

type customFieldService struct {
	tenantRepo repositories.TenantRepository
	policy     *access.Policy
	logger     *zap.Logger
}

func NewCustomFieldService(tenantRepo repositories.TenantRepository, policy *access.Policy, logger *zap.Logger) CustomFieldService {
	return &customFieldService{tenantRepo: tenantRepo, policy: policy, logger: logger}
}

// SetSchema replaces the tenant's whole schema. Existing task values are not revalidated.
func (s *customFieldService) SetSchema(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID, defs []models.CustomFieldDefinition) (models.CustomFieldList, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	schema, err := customfields.ValidateSchema(defs)
	if err != nil {
		return nil, customFieldError(err)
	}

	if err := s.tenantRepo.UpdateCustomFields(ctx, tenantID, schema); err != nil {
		return nil, wrapf(notFoundAs(err, "Tenant"), "update custom field schema")
	}

	metrics.RecordOperation("custom_field_schema", "replace")
	s.logger.Info("custom field schema replaced",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("fields", len(schema)),
		zap.String("actor_id", actor.UserID.String()),
	)
	return schema, nil
}

func (s *customFieldService) GetSchema(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID) (models.CustomFieldList, error) {
	if err := s.policy.CheckTenantAccess(actor, &tenantID, "Tenant"); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, notFoundAs(err, "Tenant")
	}
	if tenant.CustomFieldsConfig == nil {
		return models.CustomFieldList{}, nil
	}
	return tenant.CustomFieldsConfig, nil
}

// ValidateValues checks a payload against the tenant schema without storing anything.
func (s *customFieldService) ValidateValues(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID, values map[string]interface{}, requireAll bool) (models.CustomFieldValues, error) {
	if err := s.policy.CheckTenantAccess(actor, &tenantID, "Tenant"); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, notFoundAs(err, "Tenant")
	}
	validated, err := customfields.ValidateValues(tenant.CustomFieldsConfig, values, requireAll)
	if err != nil {
		return nil, customFieldError(err)
	}
	return validated, nil
}
