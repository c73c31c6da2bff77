package middleware

import (
	"time" // Request timing

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RequestLogger logs every request with its route, status, user and duration.
// Server errors log at error level, client errors at warn, the rest at info.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"method":      c.Request.Method,                 // HTTP method
			"path":        c.Request.URL.Path,               // Raw path
			"status":      status,                           // Response status
			"user_id":     SessionFrom(c).UserID,            // Zero if unauthenticated
			"duration_ms": time.Since(start).Milliseconds(), // Request duration
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("error", c.Errors.String())
		}
		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}
