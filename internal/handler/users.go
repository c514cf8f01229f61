package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/tasktracker/internal/security"
	"github.com/yourorg/tasktracker/internal/security/audit"
	"github.com/yourorg/tasktracker/internal/security/middleware"
	"github.com/yourorg/tasktracker/internal/service"
)

// UserHandler handles the admin user-management endpoints.
type UserHandler struct {
	userService *service.UserService
	authz       *security.AuthorizationService
	auditLog    *audit.Logger
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userService *service.UserService,
	authz *security.AuthorizationService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService: userService,
		authz:       authz,
		auditLog:    auditLog,
		logger:      logger,
	}
}

// requireManageUsers resolves the caller and checks the manage_users
// permission against their stored roles, not the token, so a demotion takes
// effect immediately.
func (h *UserHandler) requireManageUsers(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return 0, false
	}
	caller := h.userService.FindByID(claims.UserID)
	if caller == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "account no longer exists"})
		return 0, false
	}
	if err := h.authz.ValidatePermission(caller.Roles, security.PermManageUsers); err != nil {
		h.auditLog.LogDenied(r.Context(), caller.ID, "manage_users")
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		return 0, false
	}
	return caller.ID, true
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.requireManageUsers(w, r)
	if !ok {
		return
	}

	users := h.userService.All()
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}

	h.auditLog.LogAction(r.Context(), callerID, "list", "user", 0, "ok", "")
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": out})
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, ok := h.requireManageUsers(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	user := h.userService.FindByID(id)
	if user == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/users/{id}. Admins cannot delete their own
// account through this endpoint.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.requireManageUsers(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}
	if id == callerID {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "cannot delete your own account"})
		return
	}

	h.userService.Delete(id)
	h.auditLog.LogAction(r.Context(), callerID, "delete", "user", id, "ok", "")
	w.WriteHeader(http.StatusNoContent)
}
