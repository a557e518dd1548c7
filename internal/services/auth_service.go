package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskhub/internal/access"
	"taskhub/internal/common"
	"taskhub/internal/metrics"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
	"taskhub/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and revokes access tokens
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error)
	Logout(ctx context.Context, claims *TokenClaims) error
	Me(ctx context.Context, actor access.AuthContext) (*models.User, error)
}

type authService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
	revocation session.RevocationStore
	jwtSecret  []byte
	issuer     string
	tokenTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthContext converts verified claims into the caller identity used by services.
func (c *TokenClaims) AuthContext() (access.AuthContext, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return access.AuthContext{}, fmt.Errorf("invalid user_id claim: %w", err)
	}
	role := models.Role(c.Role)
	if !role.Valid() {
		return access.AuthContext{}, fmt.Errorf("invalid role claim %q", c.Role)
	}

	actor := access.AuthContext{UserID: userID, Role: role}
	if c.TenantID != "" {
		tenantID, err := uuid.Parse(c.TenantID)
		if err != nil {
			return access.AuthContext{}, fmt.Errorf("invalid tenant_id claim: %w", err)
		}
		actor.TenantID = &tenantID
	}
	if role != models.RoleAdmin && actor.TenantID == nil {
		return access.AuthContext{}, errors.New("non-admin token without tenant_id")
	}
	return actor, nil
}

type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tenantRepo repositories.TenantRepository,
	revocation session.RevocationStore,
	jwtSecret, issuer string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		revocation: revocation,
		jwtSecret:  []byte(jwtSecret),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error) {
	login := strings.TrimSpace(req.Username)
	if login == "" {
		login = normalizeEmail(req.Email)
	}

	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.RecordAuthAttempt("invalid_credentials")
			return nil, invalidCredentials()
		}
		return nil, wrapf(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.RecordAuthAttempt("invalid_credentials")
		return nil, invalidCredentials()
	}
	if !user.IsActive {
		metrics.RecordAuthAttempt("inactive_user")
		return nil, common.NewUnauthorizedError("user account is disabled")
	}
	if user.TenantID != nil {
		tenant, err := s.tenantRepo.GetByID(ctx, *user.TenantID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, wrapf(err, "load tenant")
		}
		if err != nil || !tenant.IsActive {
			metrics.RecordAuthAttempt("inactive_tenant")
			return nil, common.NewUnauthorizedError("tenant is not active")
		}
	}

	now := s.now()
	claims := &TokenClaims{
		UserID: user.ID.String(),
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	if user.TenantID != nil {
		claims.TenantID = user.TenantID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, wrapf(err, "sign token")
	}

	metrics.RecordAuthAttempt("success")
	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		TokenID:     claims.ID,
		IssuedAt:    now.UTC(),
		User:        user,
	}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, claims *TokenClaims) error {
	if claims.ID == "" {
		return common.NewValidationError("", "token has no identifier and cannot be revoked", nil)
	}
	expiresAt := s.now().Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.revocation.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return wrapf(err, "revoke token")
	}
	s.logger.Info("token revoked", zap.String("user_id", claims.UserID), zap.String("token_id", claims.ID))
	return nil
}

func (s *authService) Me(ctx context.Context, actor access.AuthContext) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFoundAs(err, "User")
	}
	return user, nil
}

func invalidCredentials() error {
	return common.NewUnauthorizedError("invalid username or password")
}
