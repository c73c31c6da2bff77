package middleware

import (
	"strings"                        // String manipulation
	"weight_tracker/internal/auth"   // Session token parsing
	"weight_tracker/internal/domain" // Session model

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// sessionKey is the gin context key holding the request's domain.Session
const sessionKey = "session"

// SessionMiddleware turns a bearer token into a domain.Session on the context.
// It never aborts: requests without a usable token carry an empty session and
// the record store fails them closed.
func SessionMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Only well-formed bearer headers are considered
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		sess, err := auth.ParseToken(tokenStr, secret)        // Parse the JWT token
		if err != nil {
			logrus.WithField("error", err.Error()).Debug("Ignoring invalid session token")
			c.Next()
			return
		}
		c.Set(sessionKey, sess) // Store session in context
		c.Next()                // Proceed to the next handler
	}
}

// SessionFrom returns the session attached by SessionMiddleware, or an empty one
func SessionFrom(c *gin.Context) domain.Session {
	v, exists := c.Get(sessionKey)
	if !exists {
		return domain.Session{}
	}
	sess, _ := v.(domain.Session)
	return sess
}
