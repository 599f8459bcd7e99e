package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/logger"
)

const (
	// REQUEST_ID_HEADER carries the request id in both directions
	REQUEST_ID_HEADER = "X-Request-ID"

	requestIDKey = "request_id"
)

// quietPaths are polled by probes and scrapers and only logged at debug level
var quietPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// RequestID assigns every request an id, echoes it in the response and attaches a
// Sentry hub tagged with it to the request context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(REQUEST_ID_HEADER)
		if id == "" || len(id) > 128 {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(REQUEST_ID_HEADER, id)

		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag(requestIDKey, id)
			scope.SetRequest(c.Request)
		})
		c.Request = c.Request.WithContext(sentry.SetHubOnContext(c.Request.Context(), hub))

		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "" when it is not installed
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger logs one line per request
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if id := GetRequestID(c); id != "" {
			fields = append(fields, zap.String(requestIDKey, id))
		}

		if _, quiet := quietPaths[path]; quiet && c.Writer.Status() < http.StatusBadRequest {
			logger.DebugCtx(c.Request.Context(), "API request", fields...)
			return
		}
		logger.InfoCtx(c.Request.Context(), "API request", fields...)
	}
}

// Recovery turns a handler panic into a 500 response
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorCtx(c.Request.Context(), fmt.Errorf("panic recovered: %v", r),
					zap.String("path", c.Request.URL.Path),
					zap.String(requestIDKey, GetRequestID(c)),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{"code": "internal_error", "message": "Internal server error"},
				})
			}
		}()
		c.Next()
	}
}
