package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"weight_tracker/internal/domain"     // Importing domain models
	"weight_tracker/internal/middleware" // Session from context
	"weight_tracker/internal/service"    // Record store
	"weight_tracker/internal/units"      // kg and lbs conversion
)

// AddWeightRequest records one weight. Unit defaults to kilograms.
type AddWeightRequest struct {
	ClientID uint    `json:"client_id"` // Owning client
	Weight   float64 `json:"weight"`    // Value in Unit
	Date     string  `json:"date"`      // YYYY-MM-DD, empty means today
	Unit     string  `json:"unit"`      // kg or lbs
}

// UpdateWeightRequest is a partial update; omitted fields keep their value
type UpdateWeightRequest struct {
	Weight *float64 `json:"weight"` // Value in Unit
	Date   *string  `json:"date"`   // YYYY-MM-DD
	Unit   string   `json:"unit"`   // kg or lbs
}

// ListWeightHandler returns a client's entries, converted when ?unit=lbs is given
func ListWeightHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := rs.ListWeightEntries(c.Request.Context(), middleware.SessionFrom(c), pathID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		// The unit is checked after the store so 401 and 404 come first
		unit, err := units.ParseUnit(c.Query("unit"))
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		out := make([]domain.WeightEntry, len(entries)) // Never render null
		for i, e := range entries {
			e.Weight = units.FromKilograms(e.Weight, unit)
			out[i] = e
		}
		c.JSON(http.StatusOK, out)
	}
}

// AddWeightHandler records a weight for one of the caller's clients
func AddWeightHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddWeightRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If the body is not JSON, return bad request
			rejectInput(c, rs, "Invalid request")
			return
		}
		unit, err := units.ParseUnit(req.Unit)
		if err != nil {
			rejectInput(c, rs, err.Error())
			return
		}
		// Weights are stored in kilograms
		in := domain.NewWeightEntry{
			ClientID: req.ClientID,
			Weight:   units.ToKilograms(req.Weight, unit),
			Date:     req.Date,
		}
		entry, err := rs.AddWeightEntry(c.Request.Context(), middleware.SessionFrom(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		entry.Weight = units.FromKilograms(entry.Weight, unit) // Answer in the unit the caller used
		c.JSON(http.StatusCreated, gin.H{"message": "Weight entry added", "entry": entry})
	}
}

// UpdateWeightHandler changes the weight or date of an entry
func UpdateWeightHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateWeightRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If the body is not JSON, return bad request
			rejectInput(c, rs, "Invalid request")
			return
		}
		unit, err := units.ParseUnit(req.Unit)
		if err != nil {
			rejectInput(c, rs, err.Error())
			return
		}
		patch := domain.WeightPatch{Date: req.Date}
		if req.Weight != nil {
			kg := units.ToKilograms(*req.Weight, unit)
			patch.Weight = &kg
		}
		entry, err := rs.UpdateWeightEntry(c.Request.Context(), middleware.SessionFrom(c), pathID(c), patch)
		if err != nil {
			respondError(c, err)
			return
		}
		entry.Weight = units.FromKilograms(entry.Weight, unit) // Answer in the unit the caller used
		c.JSON(http.StatusOK, gin.H{"message": "Weight entry updated", "entry": entry})
	}
}

// DeleteWeightHandler removes an entry
func DeleteWeightHandler(rs *service.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rs.DeleteWeightEntry(c.Request.Context(), middleware.SessionFrom(c), pathID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Weight entry deleted"})
	}
}
