package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/tasktracker/internal/domain"
	"github.com/yourorg/tasktracker/internal/security/audit"
	"github.com/yourorg/tasktracker/internal/security/middleware"
	"github.com/yourorg/tasktracker/internal/service"
)

// TaskHandler handles task CRUD endpoints. Every operation is scoped to the
// authenticated user; another user's task is answered exactly like a missing
// one.
type TaskHandler struct {
	taskService *service.TaskService
	auditLog    *audit.Logger
	logger      *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService, auditLog *audit.Logger, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		auditLog:    auditLog,
		logger:      logger,
	}
}

// CreateTaskRequest represents task creation request
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// UpdateTaskRequest represents a partial task update. Pointer fields
// distinguish "absent" from "set to empty".
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// ListResponse bundles the task list with the on-demand summary counters.
type ListResponse struct {
	Tasks   []*domain.Task  `json:"tasks"`
	Summary service.Summary `json:"summary"`
}

func ownerID(r *http.Request) (int64, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return 0, false
	}
	return claims.UserID, true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// List handles GET /api/tasks with optional ?priority=, ?q= and ?sort=
// query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	q := r.URL.Query()
	tasks := h.taskService.ListByOwner(owner)
	tasks = service.FilterTasks(tasks, q.Get("priority"), q.Get("q"))
	tasks = service.SortTasks(tasks, service.ParseSortKey(q.Get("sort")))

	writeJSON(w, http.StatusOK, ListResponse{
		Tasks:   tasks,
		Summary: h.taskService.Summary(owner),
	})
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode create task request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	in := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     owner,
	}
	if req.Priority != "" {
		p, ok := domain.ParsePriority(req.Priority)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "priority must be low, medium or high", Field: "priority"})
			return
		}
		in.Priority = p
	}
	if req.DueDate != "" {
		due, err := domain.ParseDate(req.DueDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "dueDate must be YYYY-MM-DD", Field: "dueDate"})
			return
		}
		in.DueDate = &due
	}

	task, err := h.taskService.Create(in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.auditLog.LogTaskMutation(r.Context(), owner, "create", task.ID, "ok")
	writeJSON(w, http.StatusCreated, task)
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}

	task := h.taskService.Find(id, owner)
	if task == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update handles PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	update := domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		p, ok := domain.ParsePriority(*req.Priority)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "priority must be low, medium or high", Field: "priority"})
			return
		}
		update.Priority = &p
	}
	if req.DueDate != nil {
		due, err := domain.ParseDate(*req.DueDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "dueDate must be YYYY-MM-DD", Field: "dueDate"})
			return
		}
		update.DueDate = &due
	}

	task, err := h.taskService.Update(id, owner, update)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.auditLog.LogTaskMutation(r.Context(), owner, "update", id, "ok")
	writeJSON(w, http.StatusOK, task)
}

// SetStatusRequest represents a status transition request
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PUT /api/tasks/{id}/status
func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "status must be todo, in-progress or completed", Field: "status"})
		return
	}

	task, err := h.taskService.SetStatus(id, owner, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.auditLog.LogTaskMutation(r.Context(), owner, "set_status", id, "ok")
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}. Deleting a missing or foreign task
// succeeds silently.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}

	h.taskService.Delete(id, owner)
	h.auditLog.LogTaskMutation(r.Context(), owner, "delete", id, "ok")
	w.WriteHeader(http.StatusNoContent)
}
