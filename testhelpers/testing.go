package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"

	"taskhub/internal/models"
	"taskhub/internal/repositories"
	"taskhub/migrations"
	"taskhub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, connString, 4, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool, migrations.Files, zap.NewNop()); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	truncate := func() error {
		_, err := pool.Exec(ctx, `TRUNCATE tasks, users, tenants CASCADE`)
		return err
	}
	if err := truncate(); err != nil {
		pool.Close()
		t.Fatalf("Failed to reset test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			defer pool.Close()
			return truncate()
		},
	}
}

// SetupTestTenant inserts an active tenant with the given custom field schema.
func SetupTestTenant(t *testing.T, db *TestDB, schema models.CustomFieldList) *models.Tenant {
	t.Helper()

	if schema == nil {
		schema = models.CustomFieldList{}
	}
	tenant := &models.Tenant{
		ID:                 uuid.New(),
		Name:               fmt.Sprintf("Tenant %s", uuid.NewString()[:8]),
		IsActive:           true,
		CustomFieldsConfig: schema,
	}

	if err := repositories.NewTenantRepo(db.Pool).Create(context.Background(), tenant); err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}
	return tenant
}

// SetupTestUser inserts a user; tenantID may be nil only for admins.
func SetupTestUser(t *testing.T, db *TestDB, tenantID *uuid.UUID, role models.Role) *models.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        fmt.Sprintf("user-%s@example.com", suffix),
		Username:     "user-" + suffix,
		PasswordHash: "not-a-real-hash",
		Role:         role,
		IsActive:     true,
	}

	if err := repositories.NewUserRepo(db.Pool).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}
