package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/internal/logger"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
	"taskhub/internal/services"
	"taskhub/testhelpers"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func signToken(t *testing.T, claims *services.TokenClaims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(tenantID uuid.UUID) *services.TokenClaims {
	userID := uuid.New()
	return &services.TokenClaims{
		UserID:   userID.String(),
		TenantID: tenantID.String(),
		Role:     string(models.RoleManager),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

type authDeps struct {
	store   *testhelpers.MockRevocationStore
	users   *testhelpers.MockUserRepository
	tenants *testhelpers.MockTenantRepository
}

func newAuthDeps() *authDeps {
	return &authDeps{
		store:   &testhelpers.MockRevocationStore{},
		users:   &testhelpers.MockUserRepository{},
		tenants: &testhelpers.MockTenantRepository{},
	}
}

// storedUser registers the row the middleware reloads for claims.
func (d *authDeps) storedUser(claims *services.TokenClaims, role models.Role, tenantID *uuid.UUID, active bool) {
	userID := uuid.MustParse(claims.UserID)
	d.users.On("GetByID", mock.Anything, userID).
		Return(&models.User{ID: userID, Role: role, TenantID: tenantID, IsActive: active}, nil)
	if tenantID != nil {
		d.tenants.On("GetByID", mock.Anything, *tenantID).
			Return(&models.Tenant{ID: *tenantID, IsActive: true}, nil).Maybe()
	}
}

func (d *authDeps) assertExpectations(t *testing.T) {
	d.store.AssertExpectations(t)
	d.users.AssertExpectations(t)
	d.tenants.AssertExpectations(t)
}

func newProtectedServer(d *authDeps) *echo.Echo {
	e := echo.New()
	group := e.Group("", echojwt.WithConfig(JWTConfig(testSecret, nil)), AuthContext(d.store, d.users, d.tenants))
	group.GET("/whoami", func(c echo.Context) error {
		actor, err := Actor(c)
		if err != nil {
			return err
		}
		tenant := "-"
		if actor.TenantID != nil {
			tenant = actor.TenantID.String()
		}
		return c.String(http.StatusOK, actor.UserID.String()+"|"+tenant+"|"+string(actor.Role))
	})
	return e
}

func doRequest(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthContext_ValidToken(t *testing.T) {
	d := newAuthDeps()
	tenantID := uuid.New()
	claims := validClaims(tenantID)
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil)
	d.storedUser(claims, models.RoleManager, &tenantID, true)

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, claims.UserID+"|"+tenantID.String()+"|manager", rec.Body.String())
	d.assertExpectations(t)
}

func TestAuthContext_MissingToken(t *testing.T) {
	rec := doRequest(newProtectedServer(newAuthDeps()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthContext_WrongSecret(t *testing.T) {
	rec := doRequest(newProtectedServer(newAuthDeps()), signToken(t, validClaims(uuid.New()), "other"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthContext_ExpiredToken(t *testing.T) {
	claims := validClaims(uuid.New())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	rec := doRequest(newProtectedServer(newAuthDeps()), signToken(t, claims, testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthContext_RevokedToken(t *testing.T) {
	d := newAuthDeps()
	claims := validClaims(uuid.New())
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(true, nil)

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_REVOKED")
	d.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAuthContext_RevocationStoreDown(t *testing.T) {
	d := newAuthDeps()
	claims := validClaims(uuid.New())
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, errors.New("dial tcp: refused"))

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthContext_MemberWithoutTenant(t *testing.T) {
	d := newAuthDeps()
	claims := validClaims(uuid.New())
	claims.TenantID = ""
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil)

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthContext_DisabledUser(t *testing.T) {
	d := newAuthDeps()
	tenantID := uuid.New()
	claims := validClaims(tenantID)
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil)
	d.storedUser(claims, models.RoleManager, &tenantID, false)

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER_INACTIVE")
}

func TestAuthContext_DeletedUser(t *testing.T) {
	d := newAuthDeps()
	claims := validClaims(uuid.New())
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil)
	d.users.On("GetByID", mock.Anything, uuid.MustParse(claims.UserID)).Return(nil, repositories.ErrNotFound)

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER_NOT_FOUND")
}

func TestAuthContext_DemotedAdminUsesStoredRole(t *testing.T) {
	d := newAuthDeps()
	tenantID := uuid.New()
	claims := validClaims(tenantID)
	claims.Role = string(models.RoleAdmin)
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil)
	d.storedUser(claims, models.RoleUser, &tenantID, true)

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, claims.UserID+"|"+tenantID.String()+"|user", rec.Body.String())
}

func TestAuthContext_MovedUserUsesStoredTenant(t *testing.T) {
	d := newAuthDeps()
	oldTenant, newTenant := uuid.New(), uuid.New()
	claims := validClaims(oldTenant)
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil)
	d.storedUser(claims, models.RoleManager, &newTenant, true)

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, claims.UserID+"|"+newTenant.String()+"|manager", rec.Body.String())
}

func TestAuthContext_InactiveTenant(t *testing.T) {
	d := newAuthDeps()
	tenantID := uuid.New()
	claims := validClaims(tenantID)
	userID := uuid.MustParse(claims.UserID)
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil)
	d.users.On("GetByID", mock.Anything, userID).
		Return(&models.User{ID: userID, Role: models.RoleManager, TenantID: &tenantID, IsActive: true}, nil)
	d.tenants.On("GetByID", mock.Anything, tenantID).Return(&models.Tenant{ID: tenantID, IsActive: false}, nil)

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TENANT_INACTIVE")
}

func TestAuthContext_UserLookupFails(t *testing.T) {
	d := newAuthDeps()
	claims := validClaims(uuid.New())
	d.store.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil)
	d.users.On("GetByID", mock.Anything, uuid.MustParse(claims.UserID)).Return(nil, errors.New("connection reset"))

	rec := doRequest(newProtectedServer(d), signToken(t, claims, testSecret))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}


func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(logger.RequestIDKey).(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(logger.RequestIDKey, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(logger.RequestIDKey))
	assert.Equal(t, "req-123", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get(logger.RequestIDKey))
	assert.NoError(t, err)
}

func TestExtractVersionFromPath(t *testing.T) {
	tests := map[string]string{
		"/v1/tasks":   "v1",
		"/v12":        "v12",
		"/v0/tasks":   "",
		"/health":     "",
		"/vendors":    "",
		"/v2x/tasks":  "",
		"/swagger/v1": "",
	}
	for path, want := range tests {
		assert.Equal(t, want, extractVersionFromPath(path), path)
	}
}

func TestAPIVersionResolver_Unsupported(t *testing.T) {
	e := echo.New()
	e.Use(NewVersionMiddleware().APIVersionResolver())
	e.GET("/v2/tasks", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2/tasks", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_VERSION")
}
