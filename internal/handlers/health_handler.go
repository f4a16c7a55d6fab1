package handlers

import (
	"context"
	"net/http"
	"time"

	"adaptive-truth/internal/logger"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

// Pinger probes the verification service
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many sessions are live
type SessionCounter interface {
	Count() int
}

type HealthHandler struct {
	upstream Pinger
	sessions SessionCounter
}

func NewHealthHandler(upstream Pinger, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{
		upstream: upstream,
		sessions: sessions,
	}
}

// Health reports own liveness plus upstream reachability
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	response := gin.H{
		"status":   "healthy",
		"service":  "adaptive-truth-client",
		"version":  "1.0.0",
		"upstream": "reachable",
	}
	if h.sessions != nil {
		response["sessions"] = h.sessions.Count()
	}

	if err := h.upstream.Ping(ctx); err != nil {
		logger.WithCorrelationID(getCorrelationID(c)).WithError(err).Warn("Verification service unreachable")
		response["status"] = "degraded"
		response["upstream"] = "unreachable"
		response["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
