package handler

import (
	"context"
	"net/http"
	"time"

	"bracket-bff/pkg/logger"
)

// HealthChecker is a dependency that can report its health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	database HealthChecker
	redis    HealthChecker
	logger   *logger.Logger
}

// NewHealthHandler creates a new health handler. redis may be nil when caching is disabled.
func NewHealthHandler(database, redis HealthChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		database: database,
		redis:    redis,
		logger:   log.Named("health"),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health. A database failure is unhealthy, a redis failure only degrades.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "bracket-bff",
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	if h.database != nil {
		if err := h.database.Health(ctx); err != nil {
			h.logger.WithError(err).Error("Database health check failed")
			response.Checks["database"] = "unhealthy"
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["database"] = "healthy"
		}
	}

	if h.redis == nil {
		response.Checks["redis"] = "disabled"
	} else if err := h.redis.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Redis health check failed")
		response.Checks["redis"] = "unhealthy"
		if status == http.StatusOK {
			response.Status = "degraded"
		}
	} else {
		response.Checks["redis"] = "healthy"
	}

	respondJSON(w, status, response)
}
