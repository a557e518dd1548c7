package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/internal/common"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
	"taskhub/testhelpers"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

type AuthServiceTestSuite struct {
	suite.Suite
	userRepo   *testhelpers.MockUserRepository
	tenantRepo *testhelpers.MockTenantRepository
	revocation *testhelpers.MockRevocationStore
	service    *authService
	ctx        context.Context
	user       *models.User
	tenant     *models.Tenant
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.userRepo = &testhelpers.MockUserRepository{}
	suite.tenantRepo = &testhelpers.MockTenantRepository{}
	suite.revocation = &testhelpers.MockRevocationStore{}
	suite.service = NewAuthService(suite.userRepo, suite.tenantRepo, suite.revocation,
		testJWTSecret, "taskhub", time.Hour, zap.NewNop()).(*authService)
	suite.ctx = context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	suite.Require().NoError(err)
	suite.tenant = &models.Tenant{ID: uuid.New(), Name: "Acme", IsActive: true}
	suite.user = &models.User{
		ID:           uuid.New(),
		TenantID:     &suite.tenant.ID,
		Email:        "ana@example.com",
		Username:     "ana",
		PasswordHash: string(hash),
		Role:         models.RoleManager,
		IsActive:     true,
	}
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
	suite.tenantRepo.AssertExpectations(suite.T())
	suite.revocation.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	suite.userRepo.On("GetByLogin", suite.ctx, "ana").Return(suite.user, nil)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenant.ID).Return(suite.tenant, nil)

	resp, err := suite.service.Login(suite.ctx, &LoginRequest{Username: "ana", Password: "correct-horse"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "bearer", resp.TokenType)
	assert.Equal(suite.T(), 3600, resp.ExpiresIn)
	assert.NotEmpty(suite.T(), resp.TokenID)

	claims := &TokenClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), resp.TokenID, claims.ID)

	actor, err := claims.AuthContext()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, actor.UserID)
	assert.Equal(suite.T(), models.RoleManager, actor.Role)
	assert.Equal(suite.T(), suite.tenant.ID, *actor.TenantID)
}

func (suite *AuthServiceTestSuite) TestLogin_ByEmail() {
	suite.userRepo.On("GetByLogin", suite.ctx, "ana@example.com").Return(suite.user, nil)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenant.ID).Return(suite.tenant, nil)

	_, err := suite.service.Login(suite.ctx, &LoginRequest{Email: " ANA@example.com", Password: "correct-horse"})
	assert.NoError(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	suite.userRepo.On("GetByLogin", suite.ctx, "ana").Return(suite.user, nil)

	_, err := suite.service.Login(suite.ctx, &LoginRequest{Username: "ana", Password: "wrong"})
	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownUser() {
	suite.userRepo.On("GetByLogin", suite.ctx, "ghost").Return(nil, repositories.ErrNotFound)

	_, err := suite.service.Login(suite.ctx, &LoginRequest{Username: "ghost", Password: "x"})
	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *AuthServiceTestSuite) TestLogin_InactiveTenant() {
	suite.tenant.IsActive = false
	suite.userRepo.On("GetByLogin", suite.ctx, "ana").Return(suite.user, nil)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenant.ID).Return(suite.tenant, nil)

	_, err := suite.service.Login(suite.ctx, &LoginRequest{Username: "ana", Password: "correct-horse"})
	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *AuthServiceTestSuite) TestLogin_InactiveUser() {
	suite.user.IsActive = false
	suite.userRepo.On("GetByLogin", suite.ctx, "ana").Return(suite.user, nil)

	_, err := suite.service.Login(suite.ctx, &LoginRequest{Username: "ana", Password: "correct-horse"})
	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *AuthServiceTestSuite) TestLogout_RevokesUntilExpiry() {
	expires := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	claims := &TokenClaims{
		UserID: suite.user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "token-1",
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	suite.revocation.On("Revoke", suite.ctx, "token-1", expires).Return(nil)

	assert.NoError(suite.T(), suite.service.Logout(suite.ctx, claims))
}

func (suite *AuthServiceTestSuite) TestLogout_StoreFailure() {
	claims := &TokenClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "token-2"}}
	suite.service.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	suite.revocation.On("Revoke", suite.ctx, "token-2", time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)).
		Return(errors.New("redis down"))

	err := suite.service.Logout(suite.ctx, claims)
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "revoke token")
}

func (suite *AuthServiceTestSuite) TestLogout_WithoutTokenID() {
	err := suite.service.Logout(suite.ctx, &TokenClaims{})
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func TestTokenClaims_AuthContext(t *testing.T) {
	userID := uuid.New()

	admin, err := (&TokenClaims{UserID: userID.String(), Role: "admin"}).AuthContext()
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.Nil(t, admin.TenantID)

	_, err = (&TokenClaims{UserID: userID.String(), Role: "user"}).AuthContext()
	assert.Error(t, err)

	_, err = (&TokenClaims{UserID: "nope", Role: "admin"}).AuthContext()
	assert.Error(t, err)

	_, err = (&TokenClaims{UserID: userID.String(), Role: "root"}).AuthContext()
	assert.Error(t, err)
}
