package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskhub/internal/access"
	"taskhub/internal/common"
	"taskhub/internal/logger"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
	"taskhub/internal/services"
	"taskhub/internal/session"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	tokenContextKey  = "user"
	actorContextKey  = "auth_context"
	claimsContextKey = "token_claims"
)

// JWTConfig builds the echo-jwt configuration. Tokens signed with HMAC are
// checked against secret; any other algorithm is resolved through jwks when
// an external issuer is configured.
func JWTConfig(secret string, jwks *keyfunc.JWKS) echojwt.Config {
	return echojwt.Config{
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.TokenClaims)
		},
		KeyFunc: func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				return []byte(secret), nil
			}
			if jwks == nil {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return jwks.Keyfunc(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.FromContext(c).Debug("token rejected", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Invalid or missing token", nil))
		},
	}
}

// NewJWKS fetches the signing keys of an external issuer and keeps them refreshed.
func NewJWKS(url string, log *zap.Logger) (*keyfunc.JWKS, error) {
	return keyfunc.Get(url, keyfunc.Options{
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Warn("failed to refresh JWKS", zap.String("url", url), zap.Error(err))
		},
	})
}

// AuthContext turns the verified token into the caller identity services use.
// Role and tenant come from the stored user row, so a demotion, move or
// deactivation takes effect on the next request rather than at token expiry.
// It must run after the echo-jwt middleware.
func AuthContext(revocation session.RevocationStore, users repositories.UserRepository, tenants repositories.TenantRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			ctx := c.Request().Context()

			if claims.ID != "" {
				revoked, err := revocation.IsRevoked(ctx, claims.ID)
				if err != nil {
					logger.FromContext(c).Error("revocation check failed", zap.Error(err))
					return common.SendServiceUnavailableError(c, "Unable to verify session")
				}
				if revoked {
					return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("TOKEN_REVOKED", "Token has been revoked", nil))
				}
			}

			tokenActor, err := claims.AuthContext()
			if err != nil {
				logger.FromContext(c).Warn("malformed token claims", zap.Error(err))
				return common.SendUnauthorizedError(c)
			}

			actor, code, err := loadActor(ctx, users, tenants, tokenActor.UserID)
			if err != nil {
				logger.FromContext(c).Error("caller lookup failed", zap.Error(err))
				return common.SendServiceUnavailableError(c, "Unable to verify session")
			}
			if code != "" {
				logger.FromContext(c).Info("token subject no longer valid",
					zap.String("user_id", tokenActor.UserID.String()), zap.String("reason", code))
				return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse(code, "Session is no longer valid", nil))
			}

			c.Set(actorContextKey, actor)
			c.Set(claimsContextKey, claims)
			c.SetRequest(c.Request().WithContext(access.WithAuthContext(ctx, actor)))
			fields := []zap.Field{zap.String("user_id", actor.UserID.String()), zap.String("role", string(actor.Role))}
			if actor.TenantID != nil {
				fields = append(fields, zap.String("tenant_id", actor.TenantID.String()))
			}
			logger.WithFields(c, fields...)

			return next(c)
		}
	}
}

// loadActor resolves the current identity of userID. A non-empty code means
// the caller must be rejected with that error code; err is reserved for
// lookup failures.
func loadActor(ctx context.Context, users repositories.UserRepository, tenants repositories.TenantRepository, userID uuid.UUID) (access.AuthContext, string, error) {
	user, err := users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return access.AuthContext{}, "USER_NOT_FOUND", nil
	}
	if err != nil {
		return access.AuthContext{}, "", err
	}
	if !user.IsActive {
		return access.AuthContext{}, "USER_INACTIVE", nil
	}
	if user.TenantID == nil {
		if user.Role != models.RoleAdmin {
			return access.AuthContext{}, "TENANT_REQUIRED", nil
		}
		return access.AuthContext{UserID: user.ID, Role: user.Role}, "", nil
	}

	tenant, err := tenants.GetByID(ctx, *user.TenantID)
	if errors.Is(err, repositories.ErrNotFound) {
		return access.AuthContext{}, "TENANT_INACTIVE", nil
	}
	if err != nil {
		return access.AuthContext{}, "", err
	}
	if !tenant.IsActive {
		return access.AuthContext{}, "TENANT_INACTIVE", nil
	}
	tenantID := *user.TenantID
	return access.AuthContext{UserID: user.ID, Role: user.Role, TenantID: &tenantID}, "", nil
}

var ErrNoAuthContext = errors.New("request is not authenticated")

// Actor returns the caller identity stored by AuthContext.
func Actor(c echo.Context) (access.AuthContext, error) {
	if actor, ok := c.Get(actorContextKey).(access.AuthContext); ok {
		return actor, nil
	}
	if actor, ok := access.FromContext(c.Request().Context()); ok {
		return actor, nil
	}
	return access.AuthContext{}, ErrNoAuthContext
}

// Claims returns the verified token claims stored by AuthContext.
func Claims(c echo.Context) (*services.TokenClaims, error) {
	if claims, ok := c.Get(claimsContextKey).(*services.TokenClaims); ok {
		return claims, nil
	}
	return nil, ErrNoAuthContext
}

// SetActor installs a caller identity directly. Used by tests and internal routes.
func SetActor(c echo.Context, actor access.AuthContext) {
	c.Set(actorContextKey, actor)
	c.SetRequest(c.Request().WithContext(access.WithAuthContext(c.Request().Context(), actor)))
}
