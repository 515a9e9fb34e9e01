package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"seungpyo.lee/StudentPortal/pkg/logger"
	"seungpyo.lee/StudentPortal/pkg/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logger to the request context,
// logs the outcome of every request and updates the request counters.
func RequestLogger(log *logger.Logger, reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request
		rid := req.Header.Get(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, rid)

		reqLog := log.With(
			"request_id", rid,
			"method", req.Method,
			"path", req.URL.Path,
			"remote_ip", c.ClientIP(),
		)
		c.Request = req.WithContext(reqLog.WithContext(req.Context()))

		c.Next()

		status := c.Writer.Status()
		labels := map[string]string{
			"method": req.Method,
			"route":  c.FullPath(),
			"status": statusClass(status),
		}
		reg.Inc(c.Request.Context(), "http_requests_total", labels, 1)

		if status >= 500 || len(c.Errors) > 0 {
			reqLog.Error("http request failed",
				"status", status,
				"duration", time.Since(start).String(),
				"errors", c.Errors.String(),
			)
			reg.Inc(c.Request.Context(), "http_requests_errors_total", labels, 1)
			return
		}
		reqLog.Info("http request served", "status", status, "duration", time.Since(start).String())
	}
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "0"
	}
}
