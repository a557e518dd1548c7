package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskhub/internal/access"
	"taskhub/internal/metrics"
	"taskhub/internal/models"
	"taskhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportService writes a tenant snapshot to object storage for offline backup.
type ExportService interface {
	ExportTenant(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID) (*models.ExportResult, error)
}

type exportService struct {
	tenantRepo repositories.TenantRepository
	userRepo   repositories.UserRepository
	taskRepo   repositories.TaskRepository
	storage    MinioService
	policy     *access.Policy
	bucket     string
	urlTTL     time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewExportService(
	tenantRepo repositories.TenantRepository,
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	storage MinioService,
	policy *access.Policy,
	bucket string,
	urlTTL time.Duration,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		taskRepo:   taskRepo,
		storage:    storage,
		policy:     policy,
		bucket:     bucket,
		urlTTL:     urlTTL,
		logger:     logger,
		now:        time.Now,
	}
}

type tenantSnapshot struct {
	ExportedAt time.Time      `json:"exported_at"`
	Tenant     *models.Tenant `json:"tenant"`
	Users      []*models.User `json:"users"`
	Tasks      []*models.Task `json:"tasks"`
}

func (s *exportService) ExportTenant(ctx context.Context, actor access.AuthContext, tenantID uuid.UUID) (*models.ExportResult, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, notFoundAs(err, "Tenant")
	}
	users, err := s.userRepo.List(ctx, repositories.UserFilter{TenantID: &tenantID})
	if err != nil {
		return nil, wrapf(err, "list users for export")
	}
	tasks, err := s.taskRepo.List(ctx, repositories.TaskFilter{TenantID: &tenantID})
	if err != nil {
		return nil, wrapf(err, "list tasks for export")
	}

	now := s.now().UTC()
	payload, err := json.MarshalIndent(tenantSnapshot{ExportedAt: now, Tenant: tenant, Users: users, Tasks: tasks}, "", "  ")
	if err != nil {
		return nil, wrapf(err, "encode export")
	}

	if err := s.storage.EnsureBucketExists(ctx, s.bucket); err != nil {
		return nil, wrapf(err, "prepare export bucket")
	}
	key := fmt.Sprintf("tenants/%s/export-%d.json", tenantID, now.Unix())
	if err := s.storage.Upload(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		return nil, wrapf(err, "upload export")
	}
	url, err := s.storage.GetPresignedURL(ctx, s.bucket, key, s.urlTTL)
	if err != nil {
		return nil, wrapf(err, "presign export")
	}

	metrics.RecordOperation("tenant", "export")
	s.logger.Info("tenant exported",
		zap.String("tenant_id", tenantID.String()),
		zap.String("object", key),
		zap.Int("tasks", len(tasks)),
		zap.Int("users", len(users)),
	)
	return &models.ExportResult{
		ObjectKey:   key,
		Bucket:      s.bucket,
		DownloadURL: url,
		ExpiresAt:   now.Add(s.urlTTL),
		TaskCount:   len(tasks),
		UserCount:   len(users),
		GeneratedAt: now,
	}, nil
}
