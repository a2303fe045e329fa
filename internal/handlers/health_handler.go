package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/services"

	"github.com/labstack/echo/v4"
)

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	service services.BudgetServiceInterface
	backend string
	logger  *slog.Logger
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(service services.BudgetServiceInterface, backend string, logger *slog.Logger) *HealthCheckHandler {
	return &HealthCheckHandler{service: service, backend: backend, logger: logger}
}

// HealthCheck reports whether the storage backend is reachable.
//
// Method: GET /health
//
// Success Response: 200 OK with status, backend and time
// Error Responses:
//   - 503: storage backend unreachable (SYSTEM_003)
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	if err := h.service.HealthCheck(); err != nil {
		h.logger.Warn("health check failed", "backend", h.backend, "error", err)
		return SendError(c, errors.SystemServiceUnavailable,
			errors.WithDetails("storage backend unreachable"))
	}

	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "healthy",
		Backend: h.backend,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}
