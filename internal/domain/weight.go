package domain

import "time"

// DateLayout is the only accepted format for weight entry dates.
const DateLayout = "2006-01-02"

// WeightEntry Model
type WeightEntry struct {
	ID       uint    `gorm:"primaryKey" json:"id"`                  // Primary key
	Weight   float64 `gorm:"not null" json:"weight"`                // Kilograms
	Date     string  `gorm:"type:varchar(10);not null" json:"date"` // YYYY-MM-DD
	ClientID uint    `gorm:"index;not null" json:"client_id"`       // Foreign key to Client
}

// NewWeightEntry is the input for recording a weight. An empty Date means today.
type NewWeightEntry struct {
	ClientID uint
	Weight   float64
	Date     string
}

// WeightPatch is a partial update; nil fields are left unchanged.
type WeightPatch struct {
	Weight *float64
	Date   *string
}

// Apply merges the patch into the entry and returns the result
func (p WeightPatch) Apply(e WeightEntry) WeightEntry {
	if p.Weight != nil {
		e.Weight = *p.Weight
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}

// ValidDate reports whether s is a calendar date in DateLayout
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
