package handlers

import (
	"context"
	"io"
	"time"

	"taskhub/internal/access"
	"taskhub/internal/models"
	"taskhub/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, actor access.AuthContext, req *services.CreateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, actor access.AuthContext, req *services.ListTasksRequest) ([]*models.Task, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *services.UpdateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, actor access.AuthContext, req *services.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, actor access.AuthContext, req *services.ListUsersRequest) ([]*models.User, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *services.UpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID, opts services.DeleteUserOptions) error {
	args := m.Called(ctx, actor, id, opts)
	return args.Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) TaskStats(ctx context.Context, actor access.AuthContext, tenantID *uuid.UUID) (*models.TaskStats, error) {
	args := m.Called(ctx, actor, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskStats), args.Error(1)
}

func (m *MockDashboardService) TenantStats(ctx context.Context, actor access.AuthContext) ([]models.TenantStats, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.TenantStats), args.Error(1)
}

func (m *MockDashboardService) UserTaskStats(ctx context.Context, actor access.AuthContext, userID uuid.UUID) (*models.TaskStats, error) {
	args := m.Called(ctx, actor, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskStats), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req *services.LoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *services.TokenClaims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, actor access.AuthContext) (*models.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	return m.Called(ctx, bucketName, objectName, reader, objectSize, contentType).Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	return m.Called(ctx, bucketName).Error(0)
}

func (m *MockMinioService) Ping(ctx context.Context, bucketName string) error {
	return m.Called(ctx, bucketName).Error(0)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) Create(ctx context.Context, actor access.AuthContext, req *services.CreateTenantRequest) (*models.Tenant, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantService) Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantService) List(ctx context.Context, actor access.AuthContext, req *services.ListTenantsRequest) ([]*models.Tenant, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantService) Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *services.UpdateTenantRequest) (*models.Tenant, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantService) Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockCustomFieldService struct {
	mock.Mock
}

func (m *MockCustomFieldService) SetSchema(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID, defs []models.CustomFieldDefinition) (models.CustomFieldList, error) {
	args := m.Called(ctx, actor, tenantID, defs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.CustomFieldList), args.Error(1)
}

func (m *MockCustomFieldService) GetSchema(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID) (models.CustomFieldList, error) {
	args := m.Called(ctx, actor, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.CustomFieldList), args.Error(1)
}

func (m *MockCustomFieldService) ValidateValues(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID, values map[string]interface{}, requireAll bool) (models.CustomFieldValues, error) {
	args := m.Called(ctx, actor, tenantID, values, requireAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.CustomFieldValues), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportTenant(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID) (*models.ExportResult, error) {
	args := m.Called(ctx, actor, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExportResult), args.Error(1)
}
