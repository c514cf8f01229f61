package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/tasktracker/internal/featureflags"
	"github.com/yourorg/tasktracker/internal/handler"
	"github.com/yourorg/tasktracker/internal/infrastructure/logger"
	"github.com/yourorg/tasktracker/internal/observability/metrics"
	"github.com/yourorg/tasktracker/internal/observability/tracing"
	"github.com/yourorg/tasktracker/internal/repository"
	"github.com/yourorg/tasktracker/internal/security"
	"github.com/yourorg/tasktracker/internal/security/audit"
	"github.com/yourorg/tasktracker/internal/security/auth"
	"github.com/yourorg/tasktracker/internal/security/middleware"
	"github.com/yourorg/tasktracker/internal/security/password"
	"github.com/yourorg/tasktracker/internal/security/ratelimit"
	"github.com/yourorg/tasktracker/internal/service"
	"github.com/yourorg/tasktracker/internal/worker"
	"github.com/yourorg/tasktracker/pkg/cache"
	"github.com/yourorg/tasktracker/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting TaskTracker server", slog.String("environment", cfg.Environment))

	// 3. Initialize tracing
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdownTracing, err := tracing.Init(ctx, log, "tasktracker", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize repositories
	userRepo, err := repository.NewFileUserRepository(cfg.UsersFile, log)
	if err != nil {
		log.Error("failed to open user store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	taskRepo, err := repository.NewFileTaskRepository(cfg.TasksFile, log)
	if err != nil {
		log.Error("failed to open task store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Initialize services
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	userService := service.NewUserService(userRepo, hasher, log)
	taskService := service.NewTaskService(taskRepo, log)

	// 6. Initialize security components
	tokenManager := auth.NewTokenManager(os.Getenv("JWT_SECRET"), "tasktracker")
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitMaxRequests, time.Duration(cfg.RateLimitWindowSecs)*time.Second)
	auditLogger := audit.NewLogger(log)
	authz := security.NewAuthorizationService(log)
	resetTokens := cache.New()

	// 7. Initialize handlers
	authHandler := handler.NewAuthHandler(userService, tokenManager, resetTokens, auditLogger, log)
	taskHandler := handler.NewTaskHandler(taskService, auditLogger, log)
	userHandler := handler.NewUserHandler(userService, authz, auditLogger, log)
	healthHandler := handler.NewHealthHandler(cfg.DataDir)

	// 8. Setup HTTP routes
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
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> audit -> rate limit -> CORS -> mux.
	// JWT runs before audit and rate limiting so both see the authenticated
	// identity; with the reverse order the per-user limit would key on "" and
	// never engage.
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.AuditMiddleware(auditLogger)(
					middleware.RateLimitMiddleware(rateLimiter, log)(handlerWithCORS),
				),
			),
		),
		log,
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "tasktracker")

	// 9. Start background workers
	sweepWorker := worker.NewSweepWorker(taskRepo, log, time.Duration(cfg.SweepIntervalMinutes)*time.Minute)
	go sweepWorker.Start(ctx)

	if featureflags.Enabled("DATA_BACKUPS") {
		backupWorker := worker.NewBackupWorker(
			[]string{cfg.UsersFile, cfg.TasksFile},
			filepath.Join(cfg.DataDir, "backups"),
			cfg.BackupRetention,
			log,
			time.Duration(cfg.BackupIntervalMinutes)*time.Minute,
		)
		go backupWorker.Start(ctx)
	}

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.String("users_file", cfg.UsersFile),
		slog.String("tasks_file", cfg.TasksFile),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop background workers
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
