package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

type TaskFilter struct {
	TenantID   *uuid.UUID
	AssignedTo *uuid.UUID
	Status     *models.TaskStatus
	Limit      int
	Offset     int
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	Snapshots(ctx context.Context, filter TaskFilter) ([]models.TaskSnapshot, error)
	CountByCreator(ctx context.Context, userID uuid.UUID) (int, error)
	CountByAssignee(ctx context.Context, userID uuid.UUID) (int, error)
	UnassignUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type taskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) TaskRepository {
	return &taskRepo{db: db}
}

const taskColumns = `id, title, description, status, priority, due_date, completed_at, tenant_id, assigned_to, created_by, custom_fields, created_at, updated_at`

func (r *taskRepo) Create(ctx context.Context, task *models.Task) error {
	customFields, err := task.CustomFields.MarshalStorage()
	if err != nil {
		return err
	}

	// Timestamps are stamped by the caller so completed_at and created_at
	// share one clock.
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}

	query := `
		INSERT INTO tasks (id, title, description, status, priority, due_date, completed_at, tenant_id, assigned_to, created_by, custom_fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = executor(ctx, r.db).Exec(ctx, query,
		task.ID, task.Title, task.Description, string(task.Status), string(task.Priority), task.DueDate, task.CompletedAt,
		task.TenantID, task.AssignedTo, task.CreatedBy, customFields, task.CreatedAt, task.UpdatedAt,
	)
	return mapError(err)
}

func (r *taskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(executor(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *taskRepo) Update(ctx context.Context, task *models.Task) error {
	customFields, err := task.CustomFields.MarshalStorage()
	if err != nil {
		return err
	}

	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = time.Now().UTC()
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, completed_at = $6,
			assigned_to = $7, custom_fields = $8, updated_at = $9
		WHERE id = $10
	`
	tag, err := executor(ctx, r.db).Exec(ctx, query,
		task.Title, task.Description, string(task.Status), string(task.Priority), task.DueDate, task.CompletedAt,
		task.AssignedTo, customFields, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := executor(ctx, r.db).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepo) List(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	where, args := filter.where()
	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	rows, err := executor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Snapshots returns the status and due date of every task matching filter. Limit and Offset are ignored.
func (r *taskRepo) Snapshots(ctx context.Context, filter TaskFilter) ([]models.TaskSnapshot, error) {
	where, args := filter.where()
	rows, err := executor(ctx, r.db).Query(ctx, `SELECT status, due_date FROM tasks`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []models.TaskSnapshot{}
	for rows.Next() {
		var snap models.TaskSnapshot
		var status string
		if err := rows.Scan(&status, &snap.DueDate); err != nil {
			return nil, err
		}
		snap.Status = models.TaskStatus(status)
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (r *taskRepo) CountByCreator(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := executor(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE created_by = $1`, userID).Scan(&count)
	return count, mapError(err)
}

func (r *taskRepo) CountByAssignee(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := executor(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE assigned_to = $1`, userID).Scan(&count)
	return count, mapError(err)
}

func (r *taskRepo) UnassignUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := executor(ctx, r.db).Exec(ctx, `UPDATE tasks SET assigned_to = NULL, updated_at = NOW() WHERE assigned_to = $1`, userID)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (f TaskFilter) where() (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.TenantID != nil {
		args = append(args, *f.TenantID)
		conds = append(conds, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if f.AssignedTo != nil {
		args = append(args, *f.AssignedTo)
		conds = append(conds, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var status, priority string
	var customFields []byte
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.DueDate,
		&task.CompletedAt,
		&task.TenantID,
		&task.AssignedTo,
		&task.CreatedBy,
		&customFields,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	task.Status = models.TaskStatus(status)
	task.Priority = models.TaskPriority(priority)
	task.CustomFields, err = models.UnmarshalStorage(customFields)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	return task, nil
}
