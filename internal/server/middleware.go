package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pin-go/internal/files"
	"pin-go/internal/safety"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing a client-supplied one.
// The id is stored on the request context for the journal.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)
		c.Set("request_id", id)
		c.Request = c.Request.WithContext(files.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog writes one record per request.
func AccessLog(logger safety.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		}
		if c.Writer.Status() >= 500 {
			logger.Warn("http request", args...)
			return
		}
		logger.Debug("http request", args...)
	}
}
