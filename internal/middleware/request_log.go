package middleware

import (
	"time"

	"boards/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if caller, ok := Caller(c); ok {
			attrs = append(attrs, "caller", caller)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Log.Error("request", append(attrs, "errors", c.Errors.String())...)
		case status >= 400:
			logger.Log.Warn("request", attrs...)
		default:
			logger.Log.Info("request", attrs...)
		}
	}
}
