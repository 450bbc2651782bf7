package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/estatedesk/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for each dependency check
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DependencyCheck names a dependency probed by the readiness endpoint.
// Optional dependencies are reported but do not fail readiness.
type DependencyCheck struct {
	Pinger   Pinger
	Name     string
	Optional bool
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	startTime time.Time
	env       string
	checks    []DependencyCheck
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(env string, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		env:       env,
		checks:    checks,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Dependencies map[string]string `json:"dependencies"`
	Status       string            `json:"status"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health endpoint.
// It does not check any dependencies and is used for liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// Returns 503 when any required dependency is unreachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	response := ReadyResponse{
		Status:       "ready",
		Dependencies: make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		err := check.Pinger.Ping(ctx)
		cancel()

		if err == nil {
			response.Dependencies[check.Name] = "connected"
			continue
		}

		response.Dependencies[check.Name] = "disconnected"
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Dependency health check failed", err, map[string]interface{}{
				"dependency": check.Name,
				"optional":   check.Optional,
				"timeout":    HealthCheckTimeout.String(),
			})
		}
		if !check.Optional {
			response.Status = "not_ready"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, response)
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
