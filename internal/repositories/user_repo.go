package repositories

import (
	"context"
	"fmt"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

type UserFilter struct {
	TenantID *uuid.UUID
	Limit    int
	Offset   int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserFilter) ([]*models.User, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, tenant_id, email, username, full_name, password_hash, role, is_active, created_at, updated_at`

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, username, full_name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := executor(ctx, r.db).QueryRow(ctx, query, user.ID, user.TenantID, user.Email, user.Username, user.FullName, user.PasswordHash, string(user.Role), user.IsActive).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(executor(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(executor(ctx, r.db).QueryRow(ctx, query, email))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(executor(ctx, r.db).QueryRow(ctx, query, username))
}

func (r *userRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 LIMIT 1`
	return scanUser(executor(ctx, r.db).QueryRow(ctx, query, login))
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET tenant_id = $1, email = $2, username = $3, full_name = $4, password_hash = $5, role = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	err := executor(ctx, r.db).QueryRow(ctx, query, user.TenantID, user.Email, user.Username, user.FullName, user.PasswordHash, string(user.Role), user.IsActive, user.ID).
		Scan(&user.UpdatedAt)
	return mapError(err)
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := executor(ctx, r.db).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}
	argIdx := 0

	if filter.TenantID != nil {
		argIdx++
		query += fmt.Sprintf(" AND tenant_id = $%d", argIdx)
		args = append(args, *filter.TenantID)
	}

	query += " ORDER BY username"

	if filter.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filter.Offset)
		}
	}

	rows, err := executor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := executor(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, mapError(err)
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var role string
	err := row.Scan(&user.ID, &user.TenantID, &user.Email, &user.Username, &user.FullName, &user.PasswordHash, &role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	user.Role = models.Role(role)
	return user, nil
}
