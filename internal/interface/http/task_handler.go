package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskflow-app/taskflow/internal/application"
	repo "github.com/taskflow-app/taskflow/internal/domain/repository"
	"github.com/taskflow-app/taskflow/internal/interface/middleware"
	"github.com/taskflow-app/taskflow/pkg/response"
	"github.com/taskflow-app/taskflow/pkg/validation"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

func (h *TaskHandler) writeError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, repo.ErrNotFound):
		// Absent and not-owned rows get the same body so callers cannot
		// probe for other users' task ids.
		response.Error(c, http.StatusNotFound, "Task not found")
	default:
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("task operation failed")
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

// List GET /api/tasks?status&priority&search
func (h *TaskHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	f := repo.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	}
	tasks, err := h.Svc.List(c.Request.Context(), uid, f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

// Stats GET /api/tasks/stats
func (h *TaskHandler) Stats(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	stats, err := h.Svc.Stats(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Get GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	task, err := h.Svc.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task)
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var in application.CreateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstError(err))
		return
	}
	task, err := h.Svc.Create(c.Request.Context(), uid, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, task)
}

// Update PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var in application.UpdateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstError(err))
		return
	}
	task, err := h.Svc.Update(c.Request.Context(), uid, c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task)
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Task deleted")
}
