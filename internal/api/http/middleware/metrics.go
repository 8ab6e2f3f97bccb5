package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/observability/metrics"
)

// MetricsMiddleware records per-request Prometheus metrics
type MetricsMiddleware struct {
	collector *metrics.Collector
}

// NewMetricsMiddleware creates the metrics middleware
func NewMetricsMiddleware(collector *metrics.Collector) *MetricsMiddleware {
	return &MetricsMiddleware{collector: collector}
}

// Handler returns the gin handler. The route template is used as the
// path label so IDs do not explode cardinality.
func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.collector.ObserveHTTP(c.Request.Method, path,
			strconv.Itoa(c.Writer.Status()), time.Since(started))
	}
}
