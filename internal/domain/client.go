package domain

import "time"

// Client Model
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`              // Primary key
	Name      string    `gorm:"not null" json:"name"`              // Display name
	Email     string    `gorm:"uniqueIndex;not null" json:"email"` // Unique across all clients
	UserID    uint      `gorm:"index;not null" json:"user_id"`     // Owning user
	CreatedAt time.Time `gorm:"not null" json:"created_at"`        // Creation time
}

// NewClient carries the fields a session supplies when adding a client
type NewClient struct {
	Name  string // Display name
	Email string // Email, must be unused by any client
}
