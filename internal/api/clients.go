package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"github.com/gin-gonic/gin" // Gin web framework

	"weight_tracker/internal/domain"     // Importing domain models
	"weight_tracker/internal/middleware" // Session from context
	"weight_tracker/internal/service"    // Record store
)

// AddClientRequest represents a new client
type AddClientRequest struct {
	Name  string `json:"name"`  // Display name
	Email string `json:"email"` // Unique email
}

// pathID parses the :id parameter. Anything that is not an integer in uint range
// becomes 0, which no record uses, so the store still checks the session first.
func pathID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, strconv.IntSize)
	if err != nil {
		return 0
	}
	return uint(id)
}

// ListClientsHandler returns the caller's clients in creation order
func ListClientsHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		clients, err := rs.ListClients(c.Request.Context(), middleware.SessionFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if clients == nil {
			clients = []domain.Client{} // Render an empty list, not null
		}
		c.JSON(http.StatusOK, clients)
	}
}

// GetClientHandler returns one of the caller's clients
func GetClientHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, err := rs.GetClient(c.Request.Context(), middleware.SessionFrom(c), pathID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

// AddClientHandler creates a client owned by the caller
func AddClientHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddClientRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If the body is not JSON, return bad request
			rejectInput(c, rs, "Invalid request")
			return
		}
		// Missing fields are reported by the store after the session check
		client, err := rs.AddClient(c.Request.Context(), middleware.SessionFrom(c), domain.NewClient{Name: req.Name, Email: req.Email})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Client added successfully", "client": client})
	}
}

// DeleteClientHandler removes a client together with its weight entries
func DeleteClientHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rs.DeleteClient(c.Request.Context(), middleware.SessionFrom(c), pathID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
	}
}
