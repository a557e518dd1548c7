package handlers

import (
	"net/http"

	"taskhub/internal/services"

	"github.com/labstack/echo/v4"
)

// TaskHandlers handles task-related HTTP requests
type TaskHandlers struct {
	taskService services.TaskService
}

func NewTaskHandlers(taskService services.TaskService) *TaskHandlers {
	return &TaskHandlers{taskService: taskService}
}

// ListTasks handles GET /tasks?tenant_id=&assigned_to=&status=&limit=&offset=
func (h *TaskHandlers) ListTasks(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req services.ListTasksRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, err)
	}
	if err := normalizePage(&req.Limit, &req.Offset); err != nil {
		return respondError(c, err)
	}

	tasks, err := h.taskService.List(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tasks":  tasks,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}

func (h *TaskHandlers) CreateTask(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req services.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	task, err := h.taskService.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandlers) GetTask(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.taskService.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) UpdateTask(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req services.UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	task, err := h.taskService.Update(c.Request().Context(), actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) DeleteTask(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.taskService.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
