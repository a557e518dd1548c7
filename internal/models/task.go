package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pendiente"
	TaskStatusInProgress TaskStatus = "en_progreso"
	TaskStatusCompleted  TaskStatus = "completada"
	TaskStatusCancelled  TaskStatus = "cancelada"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Open reports whether a task in this status can still become overdue.
func (s TaskStatus) Open() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "baja"
	TaskPriorityMedium   TaskPriority = "media"
	TaskPriorityHigh     TaskPriority = "alta"
	TaskPriorityCritical TaskPriority = "critica"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

type Task struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	Title        string            `json:"title" db:"title"`
	Description  *string           `json:"description,omitempty" db:"description"`
	Status       TaskStatus        `json:"status" db:"status"`
	Priority     TaskPriority      `json:"priority" db:"priority"`
	DueDate      *time.Time        `json:"due_date,omitempty" db:"due_date"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty" db:"completed_at"` // last time the task entered completada
	TenantID     uuid.UUID         `json:"tenant_id" db:"tenant_id"`
	AssignedTo   *uuid.UUID        `json:"assigned_to,omitempty" db:"assigned_to"`
	CreatedBy    uuid.UUID         `json:"created_by" db:"created_by"`
	CustomFields CustomFieldValues `json:"custom_fields" db:"custom_fields"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

func (t *Task) IsCurrentlyCompleted() bool {
	return t.Status == TaskStatusCompleted
}

func (t Task) MarshalJSON() ([]byte, error) {
	type task Task
	return json.Marshal(struct {
		task
		IsCurrentlyCompleted bool `json:"is_currently_completed"`
	}{task: task(t), IsCurrentlyCompleted: t.IsCurrentlyCompleted()})
}

// DateOrTime is a request timestamp that accepts a calendar date
// (YYYY-MM-DD, read as midnight UTC) or an RFC 3339 timestamp.
type DateOrTime struct {
	time.Time
}

func (d *DateOrTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.ParseInLocation(DateLayout, raw, time.UTC); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("date %q must be YYYY-MM-DD or RFC 3339", raw)
	}
	d.Time = t
	return nil
}

// TimePtr returns nil for a nil receiver.
func (d *DateOrTime) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// TaskSnapshot is the projection the dashboard aggregates over.
type TaskSnapshot struct {
	Status  TaskStatus
	DueDate *time.Time
}

type TaskStats struct {
	Total      int `json:"total_tasks"`
	Pending    int `json:"pending_tasks"`
	InProgress int `json:"in_progress_tasks"`
	Completed  int `json:"completed_tasks"`
	Cancelled  int `json:"cancelled_tasks"`
	Overdue    int `json:"overdue_tasks"`
}
