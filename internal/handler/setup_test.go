package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/yourorg/tasktracker/internal/repository"
	"github.com/yourorg/tasktracker/internal/security"
	"github.com/yourorg/tasktracker/internal/security/audit"
	"github.com/yourorg/tasktracker/internal/security/auth"
	"github.com/yourorg/tasktracker/internal/security/middleware"
	"github.com/yourorg/tasktracker/internal/security/password"
	"github.com/yourorg/tasktracker/internal/service"
	"github.com/yourorg/tasktracker/pkg/cache"
)

type testEnv struct {
	handler     http.Handler
	userService *service.UserService
	resetTokens *cache.Cache
}

// newTestEnv wires real services over file stores in a temp directory,
// routed exactly like the production mux.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	userRepo, err := repository.NewFileUserRepository(filepath.Join(dir, "users.json"), log)
	if err != nil {
		t.Fatalf("user repo: %v", err)
	}
	taskRepo, err := repository.NewFileTaskRepository(filepath.Join(dir, "tasks.json"), log)
	if err != nil {
		t.Fatalf("task repo: %v", err)
	}

	hasher := password.NewBcryptHasher(4)
	userService := service.NewUserService(userRepo, hasher, log)
	taskService := service.NewTaskService(taskRepo, log)

	tokenManager := auth.NewTokenManager("test-secret", "tasktracker-test")
	resetTokens := cache.New()
	auditLog := audit.NewLogger(log)
	authz := security.NewAuthorizationService(log)

	authHandler := NewAuthHandler(userService, tokenManager, resetTokens, auditLog, log)
	taskHandler := NewTaskHandler(taskService, auditLog, log)
	userHandler := NewUserHandler(userService, authz, auditLog, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)
	mux.HandleFunc("GET /api/tasks", taskHandler.List)
	mux.HandleFunc("POST /api/tasks", taskHandler.Create)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandler.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", taskHandler.Update)
	mux.HandleFunc("PUT /api/tasks/{id}/status", taskHandler.SetStatus)
	mux.HandleFunc("DELETE /api/tasks/{id}", taskHandler.Delete)
	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.HandleFunc("GET /api/users/{id}", userHandler.Get)
	mux.HandleFunc("DELETE /api/users/{id}", userHandler.Delete)

	return &testEnv{
		handler:     middleware.JWTMiddleware(tokenManager, log)(mux),
		userService: userService,
		resetTokens: resetTokens,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// register creates an account and returns its token.
func (e *testEnv) register(t *testing.T, name, email, pass string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": pass,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", name, rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("register %s: empty token", name)
	}
	return resp.Token
}
