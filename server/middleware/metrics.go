package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pullfeed/observability"
)

// Metrics records request counts, in-flight requests and latency. The route
// label is the matched Gin pattern so path parameters do not explode
// cardinality; unmatched requests are labelled "unmatched".
func Metrics(m *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		start := time.Now()
		m.RecordRequestStart(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestEnd(ctx, route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
