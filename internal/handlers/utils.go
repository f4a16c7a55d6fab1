package handlers

import (
	"adaptive-truth/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// getCorrelationID gets or generates a correlation ID for request tracing
func getCorrelationID(c *gin.Context) string {
	if id := c.GetString(middleware.CorrelationIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(middleware.CorrelationIDHeader); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

// writeError writes the standard JSON error envelope
func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":           code,
			"message":        message,
			"correlation_id": getCorrelationID(c),
		},
	})
}
