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
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Create(ctx context.Context, actor access.AuthContext, req *CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, actor access.AuthContext, req *ListUsersRequest) ([]*models.User, error)
	Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID, opts DeleteUserOptions) error
}

type userService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
	taskRepo   repositories.TaskRepository
	tx         repositories.Transactor
	policy     *access.Policy
	bcryptCost int
	logger     *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepository,
	tenantRepo repositories.TenantRepository,
	taskRepo repositories.TaskRepository,
	tx repositories.Transactor,
	policy *access.Policy,
	bcryptCost int,
	logger *zap.Logger,
) UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		taskRepo:   taskRepo,
		tx:         tx,
		policy:     policy,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

type CreateUserRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Username string      `json:"username" validate:"required,min=3,max=50"`
	Password string      `json:"password" validate:"required,min=8"`
	FullName *string     `json:"full_name"`
	Role     models.Role `json:"role" validate:"required,oneof=admin manager user"`
	TenantID *uuid.UUID  `json:"tenant_id"`
}

type UpdateUserRequest struct {
	Email    *string      `json:"email" validate:"omitempty,email"`
	Username *string      `json:"username" validate:"omitempty,min=3,max=50"`
	Password *string      `json:"password" validate:"omitempty,min=8"`
	FullName *string      `json:"full_name"`
	Role     *models.Role `json:"role" validate:"omitempty,oneof=admin manager user"`
	TenantID *uuid.UUID   `json:"tenant_id"`
	IsActive *bool        `json:"is_active"`
}

type ListUsersRequest struct {
	TenantID string `query:"tenant_id"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

type DeleteUserOptions struct {
	// Unassign clears assigned_to on the user's tasks instead of refusing the delete.
	Unassign bool
}

func (s *userService) Create(ctx context.Context, actor access.AuthContext, req *CreateUserRequest) (*models.User, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, common.NewValidationError("INVALID_ROLE", "role must be one of admin, manager, user", nil)
	}
	if req.Role != models.RoleAdmin && req.TenantID == nil {
		return nil, common.NewValidationError("TENANT_REQUIRED", "tenant_id is required for non-admin users", map[string]string{"tenant_id": "required"})
	}
	if req.TenantID != nil {
		if _, err := s.tenantRepo.GetByID(ctx, *req.TenantID); err != nil {
			return nil, notFoundAs(err, "Tenant")
		}
	}

	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if err := s.ensureUnique(ctx, email, username, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, wrapf(err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		Email:        email,
		Username:     username,
		FullName:     common.NilIfBlank(req.FullName),
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, common.NewConflictError("USER_EXISTS", "email or username already registered")
		}
		return nil, wrapf(err, "create user")
	}

	metrics.RecordOperation("user", "create")
	s.logger.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *userService) Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "User")
	}
	if err := s.policy.CheckTenantAccess(actor, user.TenantID, "User"); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor access.AuthContext, req *ListUsersRequest) ([]*models.User, error) {
	scope, err := s.policy.ScopeTenant(actor, common.ParseOptionalUUID(req.TenantID))
	if err != nil {
		return nil, err
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return nil, common.NewValidationError("", err.Error(), nil)
	}
	users, err := s.userRepo.List(ctx, repositories.UserFilter{TenantID: scope, Limit: limit, Offset: offset})
	if err != nil {
		return nil, wrapf(err, "list users")
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && (req.Role != nil || req.TenantID != nil || req.IsActive != nil) {
		return nil, common.NewForbiddenError("only administrators can change role, tenant or status")
	}
	if !actor.IsAdmin() && actor.UserID != id && (req.Email != nil || req.Username != nil || req.Password != nil) {
		return nil, common.NewForbiddenError("only administrators can change another user's credentials")
	}

	email, username := user.Email, user.Username
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
	}
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	if email != user.Email || username != user.Username {
		if err := s.ensureUnique(ctx, email, username, user.ID); err != nil {
			return nil, err
		}
	}
	user.Email, user.Username = email, username

	if req.FullName != nil {
		user.FullName = common.NilIfBlank(req.FullName)
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, common.NewValidationError("INVALID_ROLE", "role must be one of admin, manager, user", nil)
		}
		user.Role = *req.Role
	}
	if req.TenantID != nil {
		if _, err := s.tenantRepo.GetByID(ctx, *req.TenantID); err != nil {
			return nil, notFoundAs(err, "Tenant")
		}
		tenantID := *req.TenantID
		user.TenantID = &tenantID
	}
	if user.Role != models.RoleAdmin && user.TenantID == nil {
		return nil, common.NewValidationError("TENANT_REQUIRED", "tenant_id is required for non-admin users", map[string]string{"tenant_id": "required"})
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, wrapf(err, "hash password")
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, common.NewConflictError("USER_EXISTS", "email or username already registered")
		}
		return nil, wrapf(notFoundAs(err, "User"), "update user")
	}

	metrics.RecordOperation("user", "update")
	return user, nil
}

// Delete refuses to remove users referenced by tasks. Assignments can be
// cleared in the same transaction with opts.Unassign; authorship cannot.
func (s *userService) Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID, opts DeleteUserOptions) error {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID == id {
		return common.NewConflictError("CANNOT_DELETE_SELF", "you cannot delete your own account")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return notFoundAs(err, "User")
		}

		created, err := s.taskRepo.CountByCreator(ctx, id)
		if err != nil {
			return wrapf(err, "count created tasks")
		}
		if created > 0 {
			return common.NewConflictError("USER_HAS_CREATED_TASKS", "user created tasks and cannot be deleted; deactivate the user instead")
		}

		assigned, err := s.taskRepo.CountByAssignee(ctx, id)
		if err != nil {
			return wrapf(err, "count assigned tasks")
		}
		if assigned > 0 {
			if !opts.Unassign {
				return common.NewConflictError("USER_HAS_ASSIGNED_TASKS", "user has assigned tasks; retry with unassign=true to clear them")
			}
			if _, err := s.taskRepo.UnassignUser(ctx, id); err != nil {
				return wrapf(err, "unassign tasks")
			}
		}

		if err := s.userRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrReferenced) {
				return common.NewConflictError("USER_REFERENCED", "user is still referenced")
			}
			return wrapf(notFoundAs(err, "User"), "delete user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordOperation("user", "delete")
	s.logger.Info("user deleted", zap.String("user_id", id.String()), zap.Bool("unassigned", opts.Unassign))
	return nil
}

func (s *userService) ensureUnique(ctx context.Context, email, username string, self uuid.UUID) error {
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing.ID != self {
		return common.NewConflictError("EMAIL_TAKEN", "email already registered")
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return wrapf(err, "check email")
	}

	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil && existing.ID != self {
		return common.NewConflictError("USERNAME_TAKEN", "username already taken")
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return wrapf(err, "check username")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
