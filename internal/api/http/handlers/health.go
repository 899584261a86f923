package handlers

import (
	"net/http"
)

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReadyChecker reports whether the serving stack is ready
type ReadyChecker interface {
	Ready() bool
}

// HealthCheck handles health check requests
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// ReadinessCheck returns a handler that checks if the engine is ready
func ReadinessCheck(checker ReadyChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil || !checker.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
	}
}
