package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"taskhub/internal/services"
	"taskhub/internal/session"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db         Pinger
	revocation session.RevocationStore
	storage    services.MinioService
	bucket     string
	version    string
	startedAt  time.Time
	timeout    time.Duration
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db Pinger, revocation session.RevocationStore, storage services.MinioService, bucket, version string) *HealthHandlers {
	return &HealthHandlers{
		db:         db,
		revocation: revocation,
		storage:    storage,
		bucket:     bucket,
		version:    version,
		startedAt:  time.Now(),
		timeout:    2 * time.Second,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services,omitempty"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Goroutines int               `json:"goroutines"`
}

// HealthCheck reports liveness only; it never touches dependencies
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Version:    h.version,
		Goroutines: runtime.NumGoroutine(),
	})
}

// ReadinessCheck reports 503 when the database or Redis is unreachable.
// Object storage only degrades the status since it backs exports alone.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	health := &HealthStatus{
		Status:     "ready",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   make(map[string]string),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Version:    h.version,
		Goroutines: runtime.NumGoroutine(),
	}

	critical := true
	check := func(name string, isCritical bool, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			health.Services[name] = "unhealthy"
			if isCritical {
				critical = false
			} else if health.Status == "ready" {
				health.Status = "degraded"
			}
			return
		}
		health.Services[name] = "healthy"
	}

	check("database", true, h.db.Ping)
	check("redis", true, h.revocation.Ping)
	check("storage", false, func(ctx context.Context) error {
		return h.storage.Ping(ctx, h.bucket)
	})

	if !critical {
		health.Status = "not_ready"
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}
