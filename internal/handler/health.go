package handler

import (
	"net/http"
	"os"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	dataDir string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dataDir string) *HealthHandler {
	return &HealthHandler{dataDir: dataDir}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - Simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz - Returns 200 only if the data directory is
// writable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	dataOK := false
	f, err := os.CreateTemp(h.dataDir, ".readyz-*")
	if err == nil {
		f.Close()
		os.Remove(f.Name())
		checks["data_dir"] = "ok"
		dataOK = true
	} else {
		checks["data_dir"] = "error: " + err.Error()
	}

	status := "ready"
	statusCode := http.StatusOK
	if !dataOK {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadinessResponse{Status: status, Checks: checks})
}
