package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"weight_tracker/internal/auth"       // Session tokens
	"weight_tracker/internal/domain"     // Importing domain models
	"weight_tracker/internal/middleware" // Session from context
	"weight_tracker/internal/service"    // Record store
)

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Message string          `json:"message"` // Human readable outcome
	User    domain.Identity `json:"user"`    // Logged in user
	Token   string          `json:"token"`   // JWT token
}

// issue signs a token for sess and writes the auth response
func issue(c *gin.Context, status int, msg string, sess domain.Session, user domain.Identity, jwtSecret string) {
	token, err := auth.GenerateToken(sess, jwtSecret)
	if err != nil {
		// If token generation fails, return internal server error
		respondError(c, domain.Internal("Failed to generate token", err))
		return
	}
	c.JSON(status, AuthResponse{Message: msg, User: user, Token: token})
}

// RegisterHandler creates a user and logs them in
func RegisterHandler(rs *service.RecordStore, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c, "Missing required fields")
			return
		}
		// Register through the store, which enforces unique username and email
		sess, user, err := rs.Register(c.Request.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		issue(c, http.StatusCreated, "User registered successfully", sess, user, jwtSecret)
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(rs *service.RecordStore, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c, "Missing required fields")
			return
		}
		sess, user, err := rs.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			// Unknown user and wrong password look the same
			respondError(c, err)
			return
		}
		issue(c, http.StatusOK, "Login successful", sess, user, jwtSecret)
	}
}

// LogoutHandler revokes the caller's session. Calling it without one is not an error.
func LogoutHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rs.Logout(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
	}
}

// CurrentUserHandler returns the user behind the caller's session
func CurrentUserHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := rs.CurrentSession(c.Request.Context(), middleware.SessionFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
