package middleware

import (
	"adaptive-truth/internal/clients"
	"adaptive-truth/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the request trace ID in and out
	CorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDKey is the gin context key for the trace ID
	CorrelationIDKey = "correlation_id"
	// SessionIDKey is the gin context key handlers set once a session is resolved
	SessionIDKey = "session_id"
)

// LoggingMiddleware logs HTTP requests with structured logging
func LoggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		fields := map[string]interface{}{
			"correlation_id": param.Keys[CorrelationIDKey],
			"method":         param.Method,
			"path":           param.Path,
			"status":         param.StatusCode,
			"latency_ms":     param.Latency.Milliseconds(),
			"client_ip":      param.ClientIP,
			"user_agent":     param.Request.UserAgent(),
			"response_size":  param.BodySize,
		}
		if sessionID, ok := param.Keys[SessionIDKey]; ok {
			fields["session_id"] = sessionID
		}

		entry := logger.Log.WithFields(fields)
		if param.StatusCode >= 500 {
			entry.Warn("HTTP request processed")
		} else {
			entry.Info("HTTP request processed")
		}

		return ""
	})
}

// RequestIDMiddleware ensures every request has a correlation ID, echoes it
// back, and puts it on the request context for outbound calls
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = c.GetHeader("X-Request-ID")
		}
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)
		c.Request = c.Request.WithContext(clients.WithCorrelationID(c.Request.Context(), correlationID))
		c.Next()
	}
}
