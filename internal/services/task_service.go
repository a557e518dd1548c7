package services

import (
	"context"
	"strings"
	"time"

	"taskhub/internal/access"
	"taskhub/internal/common"
	"taskhub/internal/customfields"
	"taskhub/internal/metrics"
	"taskhub/internal/models"
	"taskhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskService interface {
	Create(ctx context.Context, actor access.AuthContext, req *CreateTaskRequest) (*models.Task, error)
	Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, actor access.AuthContext, req *ListTasksRequest) ([]*models.Task, error)
	Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID) error
}

type taskService struct {
	taskRepo   repositories.TaskRepository
	tenantRepo repositories.TenantRepository
	userRepo   repositories.UserRepository
	tx         repositories.Transactor
	policy     *access.Policy
	logger     *zap.Logger
	now        func() time.Time
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	tenantRepo repositories.TenantRepository,
	userRepo repositories.UserRepository,
	tx repositories.Transactor,
	policy *access.Policy,
	logger *zap.Logger,
) TaskService {
	return &taskService{
		taskRepo:   taskRepo,
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		tx:         tx,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateTaskRequest struct {
	Title        string                 `json:"title" validate:"required,max=200"`
	Description  *string                `json:"description"`
	Status       models.TaskStatus      `json:"status"`
	Priority     models.TaskPriority    `json:"priority"`
	DueDate      *models.DateOrTime     `json:"due_date"`
	TenantID     *uuid.UUID             `json:"tenant_id"`
	AssignedTo   *uuid.UUID             `json:"assigned_to"`
	CustomFields map[string]interface{} `json:"custom_fields"`
}

// UpdateTaskRequest is a partial update. CustomFields, when present, replaces the whole map.
type UpdateTaskRequest struct {
	Title        *string                `json:"title" validate:"omitempty,max=200"`
	Description  *string                `json:"description"`
	Status       *models.TaskStatus     `json:"status"`
	Priority     *models.TaskPriority   `json:"priority"`
	DueDate      *models.DateOrTime     `json:"due_date"`
	ClearDueDate bool                   `json:"clear_due_date"`
	AssignedTo   *uuid.UUID             `json:"assigned_to"`
	Unassign     bool                   `json:"unassign"`
	CustomFields map[string]interface{} `json:"custom_fields"`
}

type ListTasksRequest struct {
	TenantID   string `query:"tenant_id"`
	AssignedTo string `query:"assigned_to"`
	Status     string `query:"status"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

func (s *taskService) Create(ctx context.Context, actor access.AuthContext, req *CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.NewValidationError("", "title is required", map[string]string{"title": "title is required"})
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !status.Valid() {
		return nil, invalidStatus()
	}
	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, invalidPriority()
	}

	tenantID, err := s.resolveTenant(actor, req.TenantID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: common.NilIfBlank(req.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate.TimePtr(),
		TenantID:    tenantID,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   actor.UserID,
	}
	now := s.now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now
	if status == models.TaskStatusCompleted {
		task.CompletedAt = &now
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
		if err != nil {
			return notFoundAs(err, "Tenant")
		}
		if !tenant.IsActive {
			return common.NewConflictError("TENANT_INACTIVE", "tasks cannot be created for an inactive tenant")
		}

		if err := s.checkAssignee(ctx, tenantID, task.AssignedTo); err != nil {
			return err
		}

		values, err := customfields.ValidateValues(tenant.CustomFieldsConfig, req.CustomFields, true)
		if err != nil {
			return customFieldError(err)
		}
		task.CustomFields = values

		return wrapf(s.taskRepo.Create(ctx, task), "create task")
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOperation("task", "create")
	s.logger.Debug("task created", zap.String("task_id", task.ID.String()), zap.String("tenant_id", tenantID.String()))
	return task, nil
}

func (s *taskService) Get(ctx context.Context, actor access.AuthContext, id uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Task")
	}
	if err := s.policy.CheckTenantAccess(actor, &task.TenantID, "Task"); err != nil {
		return nil, err
	}
	return task, nil
}

// List never widens a non-admin beyond their tenant. Malformed id filters are ignored.
func (s *taskService) List(ctx context.Context, actor access.AuthContext, req *ListTasksRequest) ([]*models.Task, error) {
	filter := repositories.TaskFilter{AssignedTo: common.ParseOptionalUUID(req.AssignedTo)}

	if status := strings.TrimSpace(req.Status); status != "" {
		st := models.TaskStatus(status)
		if !st.Valid() {
			return nil, invalidStatus()
		}
		filter.Status = &st
	}

	scope, err := s.policy.ScopeTenant(actor, common.ParseOptionalUUID(req.TenantID))
	if err != nil {
		return nil, err
	}
	filter.TenantID = scope

	filter.Limit, filter.Offset, err = common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return nil, common.NewValidationError("", err.Error(), nil)
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, wrapf(err, "list tasks")
	}
	return tasks, nil
}

func (s *taskService) Update(ctx context.Context, actor access.AuthContext, id uuid.UUID, req *UpdateTaskRequest) (*models.Task, error) {
	now := s.now().UTC()
	var task *models.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.Get(ctx, actor, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return common.NewValidationError("", "title cannot be empty", map[string]string{"title": "title cannot be empty"})
			}
			task.Title = title
		}
		if req.Description != nil {
			task.Description = common.NilIfBlank(req.Description)
		}
		if req.Priority != nil {
			if !req.Priority.Valid() {
				return invalidPriority()
			}
			task.Priority = *req.Priority
		}
		switch {
		case req.ClearDueDate:
			task.DueDate = nil
		case req.DueDate != nil:
			task.DueDate = req.DueDate.TimePtr()
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				return invalidStatus()
			}
			s.transition(task, *req.Status, now)
		}

		switch {
		case req.Unassign:
			task.AssignedTo = nil
		case req.AssignedTo != nil:
			if err := s.checkAssignee(ctx, task.TenantID, req.AssignedTo); err != nil {
				return err
			}
			task.AssignedTo = req.AssignedTo
		}

		if req.CustomFields != nil {
			tenant, err := s.tenantRepo.GetByID(ctx, task.TenantID)
			if err != nil {
				return notFoundAs(err, "Tenant")
			}
			values, err := customfields.ValidateValues(tenant.CustomFieldsConfig, req.CustomFields, true)
			if err != nil {
				return customFieldError(err)
			}
			task.CustomFields = values
		}

		task.UpdatedAt = now
		return wrapf(notFoundAs(s.taskRepo.Update(ctx, task), "Task"), "update task")
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOperation("task", "update")
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, actor access.AuthContext, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Get(ctx, actor, id); err != nil {
			return err
		}
		return notFoundAs(s.taskRepo.Delete(ctx, id), "Task")
	})
	if err != nil {
		return wrapf(err, "delete task")
	}

	metrics.RecordOperation("task", "delete")
	return nil
}

// transition moves a task to status. Entering completed stamps completed_at
// with now; leaving it keeps the last completion time.
func (s *taskService) transition(task *models.Task, status models.TaskStatus, now time.Time) {
	if status == models.TaskStatusCompleted && task.Status != models.TaskStatusCompleted {
		task.CompletedAt = &now
	}
	task.Status = status
}

func (s *taskService) resolveTenant(actor access.AuthContext, requested *uuid.UUID) (uuid.UUID, error) {
	if actor.IsAdmin() {
		if requested == nil {
			return uuid.Nil, common.NewValidationError("TENANT_REQUIRED", "tenant_id is required", map[string]string{"tenant_id": "required"})
		}
		return *requested, nil
	}
	if actor.TenantID == nil {
		return uuid.Nil, common.NewForbiddenError("user is not assigned to a tenant")
	}
	if requested != nil && *requested != *actor.TenantID {
		return uuid.Nil, s.policy.Deny("Tenant")
	}
	return *actor.TenantID, nil
}

func (s *taskService) checkAssignee(ctx context.Context, tenantID uuid.UUID, assigneeID *uuid.UUID) error {
	if assigneeID == nil {
		return nil
	}
	assignee, err := s.userRepo.GetByID(ctx, *assigneeID)
	if err != nil {
		return notFoundAs(err, "Assignee")
	}
	if assignee.TenantID == nil || *assignee.TenantID != tenantID {
		return common.NewConflictError("ASSIGNEE_TENANT_MISMATCH", "assignee belongs to a different tenant")
	}
	return nil
}

func invalidStatus() error {
	return common.NewValidationError("INVALID_STATUS", "status must be one of pendiente, en_progreso, completada, cancelada", map[string]string{"status": "invalid"})
}

func invalidPriority() error {
	return common.NewValidationError("INVALID_PRIORITY", "priority must be one of baja, media, alta, critica", map[string]string{"priority": "invalid"})
}
