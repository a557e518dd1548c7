package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"taskhub/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TenantRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    TenantRepository
	context context.Context
}

func (suite *TenantRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewTenantRepo(mock)
	suite.context = context.Background()
}

func (suite *TenantRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestTenantRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TenantRepoTestSuite))
}

func tenantRow(id uuid.UUID, name string, config []byte) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "name", "nit", "description", "is_active", "custom_fields_config", "created_at", "updated_at"}).
		AddRow(id, name, nil, nil, true, config, now, now)
}

func (suite *TenantRepoTestSuite) TestCreate_Success() {
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme", IsActive: true}
	now := time.Now()

	suite.mock.ExpectQuery(`INSERT INTO tenants`).
		WithArgs(tenant.ID, tenant.Name, tenant.NIT, tenant.Description, true, []byte(`[]`)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err := suite.repo.Create(suite.context, tenant)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), now, tenant.CreatedAt)
}

func (suite *TenantRepoTestSuite) TestCreate_DuplicateName() {
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme", IsActive: true}

	suite.mock.ExpectQuery(`INSERT INTO tenants`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tenants_name_key"})

	err := suite.repo.Create(suite.context, tenant)
	assert.True(suite.T(), errors.Is(err, ErrDuplicate))
}

func (suite *TenantRepoTestSuite) TestGetByID_DecodesSchema() {
	id := uuid.New()
	schema := models.CustomFieldList{{Name: "region", Label: "Region", FieldType: models.FieldTypeSelect, Options: []string{"North"}}}
	config, err := json.Marshal(schema)
	require.NoError(suite.T(), err)

	suite.mock.ExpectQuery(`SELECT (.+) FROM tenants WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(tenantRow(id, "Acme", config))

	tenant, err := suite.repo.GetByID(suite.context, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme", tenant.Name)
	assert.Equal(suite.T(), schema, tenant.CustomFieldsConfig)
}

func (suite *TenantRepoTestSuite) TestGetByID_NotFound() {
	id := uuid.New()
	suite.mock.ExpectQuery(`SELECT (.+) FROM tenants WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	tenant, err := suite.repo.GetByID(suite.context, id)
	assert.Nil(suite.T(), tenant)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *TenantRepoTestSuite) TestSetActive_MissingTenant() {
	id := uuid.New()
	suite.mock.ExpectExec(`UPDATE tenants SET is_active = \$1`).
		WithArgs(false, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.SetActive(suite.context, id, false)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *TenantRepoTestSuite) TestList_ActiveOnly() {
	id := uuid.New()
	suite.mock.ExpectQuery(`SELECT (.+) FROM tenants WHERE is_active = true ORDER BY name LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(tenantRow(id, "Acme", []byte(`[]`)))

	tenants, err := suite.repo.List(suite.context, true, 10, 0)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), tenants, 1)
	assert.Empty(suite.T(), tenants[0].CustomFieldsConfig)
}
