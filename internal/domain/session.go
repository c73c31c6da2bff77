package domain

import "time"

// Session is one authenticated login. It is passed explicitly to every store call.
type Session struct {
	ID        string    `json:"id"`         // Opaque session ID, also the token's jti
	UserID    uint      `json:"user_id"`    // Authenticated user
	CreatedAt time.Time `json:"created_at"` // Login time
	ExpiresAt time.Time `json:"expires_at"` // Hard expiry
}

// IsZero reports whether no session was supplied
func (s Session) IsZero() bool {
	return s.ID == "" || s.UserID == 0
}

// Expired reports whether the session is past its expiry at the given time
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
