package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/tasktracker/internal/domain"
	"github.com/yourorg/tasktracker/internal/observability/metrics"
	"github.com/yourorg/tasktracker/internal/security/audit"
	"github.com/yourorg/tasktracker/internal/security/auth"
	"github.com/yourorg/tasktracker/internal/security/middleware"
	"github.com/yourorg/tasktracker/internal/service"
	"github.com/yourorg/tasktracker/pkg/cache"
)

const (
	tokenTTL      = 24 * time.Hour
	resetTokenTTL = 15 * time.Minute
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService  *service.UserService
	tokenManager *auth.TokenManager
	resetTokens  *cache.Cache
	auditLog     *audit.Logger
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userService *service.UserService,
	tokenManager *auth.TokenManager,
	resetTokens *cache.Cache,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userService:  userService,
		tokenManager: tokenManager,
		resetTokens:  resetTokens,
		auditLog:     auditLog,
		logger:       logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// UserResponse is the wire shape of a user; the password hash never leaves
// the server.
type UserResponse struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func toUserResponse(u *domain.User) UserResponse {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
	}
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Roles: roles}
}

// AuthResponse carries a fresh token together with the account it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents login request. Accounts authenticate by name, not
// email.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the typed domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field})
		return
	}
	var nferr *domain.NotFoundError
	if errors.As(err, &nferr) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: nferr.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// Register handles POST /api/auth/register. A successful registration logs
// the new account in immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode register request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.userService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		metrics.ObserveAuthAttempt("register", "failed")
		h.auditLog.LogRegistration(r.Context(), 0, "failed", err.Error())
		writeDomainError(w, err)
		return
	}

	token, err := h.tokenManager.GenerateToken(user.ID, user.Name, user.Email, tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	metrics.ObserveAuthAttempt("register", "ok")
	h.auditLog.LogRegistration(r.Context(), user.ID, "ok", "")
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Name == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name and password are required"})
		return
	}

	user := h.userService.Authenticate(req.Name, req.Password)
	if user == nil {
		metrics.ObserveAuthAttempt("login", "failed")
		h.auditLog.LogLogin(r.Context(), 0, "failed", req.Name)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	token, err := h.tokenManager.GenerateToken(user.ID, user.Name, user.Email, tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	metrics.ObserveAuthAttempt("login", "ok")
	h.auditLog.LogLogin(r.Context(), user.ID, "ok", "")
	h.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	user := h.userService.FindByID(claims.UserID)
	if user == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "account no longer exists"})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// ChangePasswordRequest represents change password request
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "oldPassword and newPassword are required"})
		return
	}

	if err := h.userService.ChangePassword(claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}

	h.auditLog.LogAction(r.Context(), claims.UserID, "change_password", "user", claims.UserID, "ok", "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// ForgotPasswordRequest represents a reset token request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/auth/forgot-password. The token is
// returned in the response; there is no mail delivery in this deployment.
// Unknown emails get the same 200 so the endpoint cannot be used to probe
// for accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "email is required"})
		return
	}

	resp := map[string]string{"message": "if the account exists, a reset token has been issued"}

	user := h.userService.FindByEmail(req.Email)
	if user == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		h.logger.Error("failed to generate reset token", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	token := hex.EncodeToString(buf)
	h.resetTokens.Set("pwreset:"+token, user.ID, resetTokenTTL)

	h.auditLog.LogAction(r.Context(), user.ID, "forgot_password", "user", user.ID, "ok", "")
	resp["resetToken"] = token
	writeJSON(w, http.StatusOK, resp)
}

// ResetPasswordRequest represents a password reset submission
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword handles POST /api/auth/reset-password. Tokens are single
// use and expire after resetTokenTTL.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "token and newPassword are required"})
		return
	}

	val, ok := h.resetTokens.Get("pwreset:" + req.Token)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
		return
	}
	userID := val.(int64)

	if err := h.userService.SetPassword(userID, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}
	h.resetTokens.Delete("pwreset:" + req.Token)

	h.auditLog.LogAction(r.Context(), userID, "reset_password", "user", userID, "ok", "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successfully"})
}
