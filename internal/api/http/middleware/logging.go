package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/observability/logging"
)

// LoggingMiddleware logs one structured line per request
type LoggingMiddleware struct {
	logger logging.Logger
}

// NewLoggingMiddleware creates the request logger
func NewLoggingMiddleware(logger logging.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Handler returns the gin handler
func (m *LoggingMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.String("client_ip", c.ClientIP()),
			logging.Any("latency", time.Since(started).String()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
			m.logger.Warn("request failed", fields...)
			return
		}
		m.logger.Info("request", fields...)
	}
}
