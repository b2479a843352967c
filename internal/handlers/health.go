package handlers

import (
	"context"
	"net/http"
	"time"

	"plantstock/internal/contextutil"
	"plantstock/internal/recordstore"
)

// HealthHandler reports whether the backing store is reachable.
type HealthHandler struct {
	backend            recordstore.DocumentStore
	collection         string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a HealthHandler probing the given collection.
func NewHealthHandler(backend recordstore.DocumentStore, collection string) *HealthHandler {
	return &HealthHandler{
		backend:            backend,
		collection:         collection,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP handles health check requests. Returns 200 when healthy and
// 503 when the backing store is unavailable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if _, err := h.backend.Count(checkCtx, h.collection); err != nil {
		logger.WarnContext(ctx, "backing store health check failed", "error", err)
		checks["record_store"] = "error"
		issues = append(issues, "record_store_unavailable")
	} else {
		checks["record_store"] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
