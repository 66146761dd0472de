package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsfong/model-parser/internal/metrics"
)

// PrometheusMiddleware records HTTP request duration and count, labelled by
// route pattern so path parameters do not explode label cardinality.
// Websocket upgrades are counted but not timed, since their duration is the
// lifetime of the subscription.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		upgrade := isWebSocketUpgrade(c.Request)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if !upgrade {
			metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		}
	}
}
