package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/utils"
)

// maxClientRequestID bounds a caller-supplied X-Request-Id.
const maxClientRequestID = 64

// LoggingMiddleware logs basic request/response details and injects a
// request id into context. A short X-Request-Id from the caller is reused.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" || len(requestID) > maxClientRequestID {
			requestID = utils.NewRequestID()
		}
		c.Set(utils.RequestIDKey, requestID)
		c.Header("X-Request-Id", requestID)

		c.Next()

		evt := log.Info()
		if status := c.Writer.Status(); status >= 500 {
			evt = log.Error()
		}
		evt = evt.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())
		if sessionID := c.Param("id"); sessionID != "" {
			evt = evt.Str("resource_id", sessionID)
		}
		if userID := c.GetInt("user_id"); userID != 0 {
			evt = evt.Int("user_id", userID)
		}
		evt.Msg("HTTP Request")
	}
}
