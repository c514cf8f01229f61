package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment           string
	ServerPort            int
	DataDir               string
	UsersFile             string
	TasksFile             string
	LogLevel              string
	BcryptCost            int
	CORSAllowedOrigins    []string
	RateLimitMaxRequests  int
	RateLimitWindowSecs   int
	SweepIntervalMinutes  int
	BackupIntervalMinutes int
	BackupRetention       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	rateLimitMax, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX_REQUESTS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX_REQUESTS: %w", err)
	}

	rateLimitWindow, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	sweepInterval, err := strconv.Atoi(getEnv("SWEEP_INTERVAL_MINUTES", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_MINUTES: %w", err)
	}

	backupInterval, err := strconv.Atoi(getEnv("BACKUP_INTERVAL_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKUP_INTERVAL_MINUTES: %w", err)
	}

	backupRetention, err := strconv.Atoi(getEnv("BACKUP_RETENTION", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKUP_RETENTION: %w", err)
	}

	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		DataDir:     dataDir,
		UsersFile:   getEnv("USERS_FILE", filepath.Join(dataDir, "users.json")),
		TasksFile:   getEnv("TASKS_FILE", filepath.Join(dataDir, "tasks.json")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		BcryptCost:  bcryptCost,
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		RateLimitMaxRequests:  rateLimitMax,
		RateLimitWindowSecs:   rateLimitWindow,
		SweepIntervalMinutes:  sweepInterval,
		BackupIntervalMinutes: backupInterval,
		BackupRetention:       backupRetention,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
