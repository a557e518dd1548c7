package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskhub/internal/access"
	"taskhub/internal/common"
	"taskhub/internal/metrics"
	"taskhub/internal/models"
	"taskhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tenantPageSize = 500

// DashboardService computes task statistics from the live task set on every call.
type DashboardService interface {
	TaskStats(ctx context.Context, actor access.AuthContext, tenantID *uuid.UUID) (*models.TaskStats, error)
	TenantStats(ctx context.Context, actor access.AuthContext) ([]models.TenantStats, error)
	UserTaskStats(ctx context.Context, actor access.AuthContext, userID uuid.UUID) (*models.TaskStats, error)
}

type dashboardService struct {
	taskRepo   repositories.TaskRepository
	tenantRepo repositories.TenantRepository
	userRepo   repositories.UserRepository
	policy     *access.Policy
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService builds the dashboard. A nil clock means time.Now.
func NewDashboardService(
	taskRepo repositories.TaskRepository,
	tenantRepo repositories.TenantRepository,
	userRepo repositories.UserRepository,
	policy *access.Policy,
	logger *zap.Logger,
	clock func() time.Time,
) DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &dashboardService{
		taskRepo:   taskRepo,
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		policy:     policy,
		logger:     logger,
		now:        clock,
	}
}

// Compute aggregates snapshots as of now. A task is overdue when it is still
// open and its due date is strictly before now.
func Compute(snapshots []models.TaskSnapshot, now time.Time) models.TaskStats {
	var stats models.TaskStats
	for _, snap := range snapshots {
		stats.Total++
		switch snap.Status {
		case models.TaskStatusPending:
			stats.Pending++
		case models.TaskStatusInProgress:
			stats.InProgress++
		case models.TaskStatusCompleted:
			stats.Completed++
		case models.TaskStatusCancelled:
			stats.Cancelled++
		}
		if snap.Status.Open() && snap.DueDate != nil && snap.DueDate.Before(now) {
			stats.Overdue++
		}
	}
	return stats
}

// TaskStats covers the caller's tenant, or for admins the requested tenant (all when nil).
func (s *dashboardService) TaskStats(ctx context.Context, actor access.AuthContext, tenantID *uuid.UUID) (*models.TaskStats, error) {
	defer metrics.TrackDashboard("task_stats")(time.Now())

	scope, err := s.policy.ScopeTenant(actor, tenantID)
	if err != nil {
		return nil, err
	}
	stats, err := s.compute(ctx, repositories.TaskFilter{TenantID: scope})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *dashboardService) TenantStats(ctx context.Context, actor access.AuthContext) ([]models.TenantStats, error) {
	defer metrics.TrackDashboard("tenant_stats")(time.Now())

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	result := []models.TenantStats{}
	for offset := 0; ; offset += tenantPageSize {
		tenants, err := s.tenantRepo.List(ctx, true, tenantPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list active tenants: %w", err)
		}
		for _, tenant := range tenants {
			tenantID := tenant.ID
			stats, err := s.compute(ctx, repositories.TaskFilter{TenantID: &tenantID})
			if err != nil {
				return nil, err
			}
			users, err := s.userRepo.CountByTenant(ctx, tenantID)
			if err != nil {
				return nil, fmt.Errorf("count users for tenant %s: %w", tenantID, err)
			}
			result = append(result, models.TenantStats{
				TenantID:   tenantID,
				TenantName: tenant.Name,
				UserCount:  users,
				TaskStats:  stats,
			})
		}
		if len(tenants) < tenantPageSize {
			break
		}
	}
	s.logger.Debug("tenant stats computed", zap.Int("tenants", len(result)))
	return result, nil
}

func (s *dashboardService) UserTaskStats(ctx context.Context, actor access.AuthContext, userID uuid.UUID) (*models.TaskStats, error) {
	defer metrics.TrackDashboard("user_task_stats")(time.Now())

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := s.policy.CheckTenantAccess(actor, user.TenantID, "User"); err != nil {
		return nil, err
	}

	stats, err := s.compute(ctx, repositories.TaskFilter{AssignedTo: &userID})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *dashboardService) compute(ctx context.Context, filter repositories.TaskFilter) (models.TaskStats, error) {
	snapshots, err := s.taskRepo.Snapshots(ctx, filter)
	if err != nil {
		return models.TaskStats{}, fmt.Errorf("load task snapshots: %w", err)
	}
	return Compute(snapshots, s.now()), nil
}
