package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByName(ctx context.Context, name string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	UpdateCustomFields(ctx context.Context, id uuid.UUID, schema models.CustomFieldList) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db DBTX
}

func NewTenantRepo(db DBTX) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, nit, description, is_active, custom_fields_config, created_at, updated_at`

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	config, err := marshalSchema(tenant.CustomFieldsConfig)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tenants (id, name, nit, description, is_active, custom_fields_config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = executor(ctx, r.db).QueryRow(ctx, query, tenant.ID, tenant.Name, tenant.NIT, tenant.Description, tenant.IsActive, config).
		Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	return mapError(err)
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(executor(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *tenantRepo) GetByName(ctx context.Context, name string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE name = $1`
	return scanTenant(executor(ctx, r.db).QueryRow(ctx, query, name))
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, nit = $2, description = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	err := executor(ctx, r.db).QueryRow(ctx, query, tenant.Name, tenant.NIT, tenant.Description, tenant.IsActive, tenant.ID).
		Scan(&tenant.UpdatedAt)
	return mapError(err)
}

func (r *tenantRepo) UpdateCustomFields(ctx context.Context, id uuid.UUID, schema models.CustomFieldList) error {
	config, err := marshalSchema(schema)
	if err != nil {
		return err
	}

	query := `UPDATE tenants SET custom_fields_config = $1, updated_at = NOW() WHERE id = $2`
	tag, err := executor(ctx, r.db).Exec(ctx, query, config, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tenantRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE tenants SET is_active = $1, updated_at = NOW() WHERE id = $2`
	tag, err := executor(ctx, r.db).Exec(ctx, query, active, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tenantRepo) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := executor(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []*models.Tenant{}
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTenant(row rowScanner) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	var config []byte
	err := row.Scan(&tenant.ID, &tenant.Name, &tenant.NIT, &tenant.Description, &tenant.IsActive, &config, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	tenant.CustomFieldsConfig = models.CustomFieldList{}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &tenant.CustomFieldsConfig); err != nil {
			return nil, fmt.Errorf("decode custom_fields_config for tenant %s: %w", tenant.ID, err)
		}
		if tenant.CustomFieldsConfig == nil {
			tenant.CustomFieldsConfig = models.CustomFieldList{}
		}
	}
	return tenant, nil
}

func marshalSchema(schema models.CustomFieldList) ([]byte, error) {
	if schema == nil {
		schema = models.CustomFieldList{}
	}
	config, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode custom_fields_config: %w", err)
	}
	return config, nil
}
