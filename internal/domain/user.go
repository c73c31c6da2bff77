package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                 // Primary key
	Username  string    `gorm:"uniqueIndex;not null" json:"username"` // Unique username
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`    // Unique email
	Password  string    `gorm:"not null" json:"-"`                    // Plain password, never serialized
	CreatedAt time.Time `gorm:"not null" json:"created_at"`           // Registration time
}

// Identity is a User without its password. It is what the store hands back to callers.
type Identity struct {
	ID        uint      `json:"id"`         // User ID
	Username  string    `json:"username"`   // Username
	Email     string    `json:"email"`      // Email
	CreatedAt time.Time `json:"created_at"` // Registration time
}

// Identity strips the password from the user
func (u User) Identity() Identity {
	return Identity{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
