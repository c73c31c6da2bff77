package api

import (
	"errors"   // Error unwrapping
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"weight_tracker/internal/domain"     // Typed store errors
	"weight_tracker/internal/middleware" // Session from context
	"weight_tracker/internal/service"    // Record store
)

// statusFor maps an error kind to its HTTP status
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "type"}. Internal causes stay in the logs.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	msg := "Internal server error"
	var de *domain.Error
	if errors.As(err, &de) && kind != domain.KindInternal {
		msg = de.Message
	}
	if kind == domain.KindInternal {
		_ = c.Error(err) // Picked up by the request logger
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed with internal error")
	}
	c.AbortWithStatusJSON(statusFor(kind), gin.H{"error": msg, "type": kind})
}

// badRequest rejects a malformed request body before it reaches the store
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "type": domain.KindInvalid})
}

// rejectInput answers a request whose body or query is unusable. The session is
// checked first so callers without a live session always get 401.
func rejectInput(c *gin.Context, rs *service.RecordStore, msg string) {
	if _, err := rs.CurrentSession(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	badRequest(c, msg)
}
