package services

import (
	"context"
	"testing"

	"taskhub/internal/access"
	"taskhub/internal/common"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
	"taskhub/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

func adminActor() access.AuthContext {
	return access.AuthContext{UserID: uuid.New(), Role: models.RoleAdmin}
}

func memberActor(role models.Role, tenantID uuid.UUID) access.AuthContext {
	return access.AuthContext{UserID: uuid.New(), Role: role, TenantID: &tenantID}
}

type TenantServiceTestSuite struct {
	suite.Suite
	mockRepo *testhelpers.MockTenantRepository
	service  TenantService
	ctx      context.Context
}

func (suite *TenantServiceTestSuite) SetupTest() {
	suite.mockRepo = &testhelpers.MockTenantRepository{}
	suite.mockRepo.Test(suite.T())
	suite.service = NewTenantService(suite.mockRepo, access.NewPolicy(access.DenyForbidden), zap.NewNop())
	suite.ctx = context.Background()
}

func (suite *TenantServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestTenantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}

func (suite *TenantServiceTestSuite) TestCreate_Success() {
	nit := " 900123 "
	req := &CreateTenantRequest{Name: "  Acme  ", NIT: &nit}

	suite.mockRepo.On("GetByName", suite.ctx, "Acme").Return(nil, repositories.ErrNotFound)
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil).Run(func(args mock.Arguments) {
		tenant := args.Get(1).(*models.Tenant)
		assert.Equal(suite.T(), "Acme", tenant.Name)
		assert.True(suite.T(), tenant.IsActive)
		assert.NotEqual(suite.T(), uuid.Nil, tenant.ID)
	})

	tenant, err := suite.service.Create(suite.ctx, adminActor(), req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "900123", *tenant.NIT)
	assert.Empty(suite.T(), tenant.CustomFieldsConfig)
}

func (suite *TenantServiceTestSuite) TestCreate_DuplicateName() {
	suite.mockRepo.On("GetByName", suite.ctx, "Acme").Return(&models.Tenant{ID: uuid.New(), Name: "Acme"}, nil)

	tenant, err := suite.service.Create(suite.ctx, adminActor(), &CreateTenantRequest{Name: "Acme"})
	assert.Nil(suite.T(), tenant)
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *TenantServiceTestSuite) TestCreate_RaceMapsUniqueViolation() {
	suite.mockRepo.On("GetByName", suite.ctx, "Acme").Return(nil, repositories.ErrNotFound)
	suite.mockRepo.On("Create", suite.ctx, mock.Anything).Return(repositories.ErrDuplicate)

	_, err := suite.service.Create(suite.ctx, adminActor(), &CreateTenantRequest{Name: "Acme"})
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *TenantServiceTestSuite) TestCreate_RequiresAdmin() {
	_, err := suite.service.Create(suite.ctx, memberActor(models.RoleManager, uuid.New()), &CreateTenantRequest{Name: "Acme"})
	assert.True(suite.T(), common.IsKind(err, common.KindForbidden))
}

func (suite *TenantServiceTestSuite) TestCreate_BlankName() {
	_, err := suite.service.Create(suite.ctx, adminActor(), &CreateTenantRequest{Name: "   "})
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *TenantServiceTestSuite) TestGet_NotFound() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.Get(suite.ctx, adminActor(), id)
	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
}

func (suite *TenantServiceTestSuite) TestGet_MemberOfOtherTenant() {
	_, err := suite.service.Get(suite.ctx, memberActor(models.RoleUser, uuid.New()), uuid.New())
	assert.True(suite.T(), common.IsKind(err, common.KindForbidden))
}

func (suite *TenantServiceTestSuite) TestGet_OwnTenant() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Name: "Acme"}, nil)

	tenant, err := suite.service.Get(suite.ctx, memberActor(models.RoleUser, id), id)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme", tenant.Name)
}

func (suite *TenantServiceTestSuite) TestList_DefaultsPagination() {
	suite.mockRepo.On("List", suite.ctx, true, 100, 0).Return([]*models.Tenant{{Name: "Acme"}}, nil)

	tenants, err := suite.service.List(suite.ctx, adminActor(), &ListTenantsRequest{ActiveOnly: true})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), tenants, 1)
}

func (suite *TenantServiceTestSuite) TestUpdate_Partial() {
	id := uuid.New()
	desc := "old"
	existing := &models.Tenant{ID: id, Name: "Acme", Description: &desc, IsActive: true}
	active := false
	newName := "Acme Corp"

	suite.mockRepo.On("GetByID", suite.ctx, id).Return(existing, nil)
	suite.mockRepo.On("GetByName", suite.ctx, newName).Return(nil, repositories.ErrNotFound)
	suite.mockRepo.On("Update", suite.ctx, existing).Return(nil)

	tenant, err := suite.service.Update(suite.ctx, adminActor(), id, &UpdateTenantRequest{Name: &newName, IsActive: &active})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), newName, tenant.Name)
	assert.False(suite.T(), tenant.IsActive)
	assert.Equal(suite.T(), "old", *tenant.Description)
}

func (suite *TenantServiceTestSuite) TestDelete_IsSoft() {
	id := uuid.New()
	suite.mockRepo.On("SetActive", suite.ctx, id, false).Return(nil)

	assert.NoError(suite.T(), suite.service.Delete(suite.ctx, adminActor(), id))
}

func (suite *TenantServiceTestSuite) TestDelete_Missing() {
	id := uuid.New()
	suite.mockRepo.On("SetActive", suite.ctx, id, false).Return(repositories.ErrNotFound)

	err := suite.service.Delete(suite.ctx, adminActor(), id)
	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
}
