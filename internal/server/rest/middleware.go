package rest

import (
	"time"

	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unmatched"

// accessLog records one log line and the request metrics per served request.
// Routes are labelled by their pattern to keep metric cardinality bounded.
func (s *HTTPServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()

		s.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)

		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", elapsed.String(),
			"ip", c.ClientIP(),
		}
		if status >= 500 {
			s.logger.Warn(c.Request.Context(), "request failed", args...)
			return
		}
		s.logger.Debug(c.Request.Context(), "request", args...)
	}
}
