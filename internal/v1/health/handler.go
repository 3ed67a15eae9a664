// Package health exposes liveness and readiness probes for the process.
package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RoomAccepter reports whether the process is currently accepting new rooms.
// Implemented by internal/v1/supervisor.Supervisor.
type RoomAccepter interface {
	AcceptingRooms() bool
	RoomCount() int
}

// Handler manages health check endpoints.
type Handler struct {
	supervisor RoomAccepter
	version    string
	startedAt  time.Time
}

// NewHandler creates a new health check handler.
func NewHandler(supervisor RoomAccepter, version string) *Handler {
	return &Handler{
		supervisor: supervisor,
		version:    version,
		startedAt:  time.Now(),
	}
}

// LivenessResponse represents the liveness probe response.
type LivenessResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// ReadinessResponse represents the readiness probe response.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Liveness handles GET /health/live. Returns 200 if the process is alive, no
// dependency checks (there are none: this server is memory-only).
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:  "alive",
		Uptime:  time.Since(h.startedAt).String(),
		Version: h.version,
	})
}

// Readiness handles GET /health/ready. Ready means the room supervisor is
// accepting new room-creation requests.
func (h *Handler) Readiness(c *gin.Context) {
	checks := map[string]string{}

	accepting := h.supervisor == nil || h.supervisor.AcceptingRooms()
	if accepting {
		checks["room_supervisor"] = "healthy"
	} else {
		checks["room_supervisor"] = "unhealthy"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !accepting {
		status = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, ReadinessResponse{Status: status, Checks: checks})
}
