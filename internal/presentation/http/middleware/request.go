// Package middleware provides gin middleware for the HTTP API.
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
	maxRequestIDLen = 128
)

// RequestID tags every request with an id, reusing a sane inbound
// X-Request-ID when the caller supplies one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger writes one line per request to logger.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"requestId", GetRequestID(c),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", time.Since(start),
			"bytes", c.Writer.Size(),
			"clientIp", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Error("Request failed", attrs...)
		case status >= 400:
			logger.Warn("Request rejected", attrs...)
		default:
			logger.Info("Request completed", attrs...)
		}
	}
}
