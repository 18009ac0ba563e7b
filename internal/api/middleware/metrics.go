package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vybr/booking-api/internal/monitoring"
)

// CollectMetrics records request latency per route template and status.
func CollectMetrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		monitoring.ObserveRequest(route, strconv.Itoa(ctx.Writer.Status()), time.Since(start).Seconds())
	}
}
