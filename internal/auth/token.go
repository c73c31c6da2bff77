package auth

import (
	"errors"
	"weight_tracker/internal/domain" // Session model

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Claims carried by a session token. The session ID travels as the jti.
type Claims struct {
	UserID               uint `json:"user_id"` // Custom claim for user ID
	jwt.RegisteredClaims      // Standard JWT claims
}

// GenerateToken creates a signed JWT for an opened session
func GenerateToken(sess domain.Session, secret string) (string, error) {
	// Set token claims
	claims := Claims{
		UserID: sess.UserID, // Custom claim for user ID
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,                            // Session ID
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt), // Issued at login time
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt), // Expires with the session
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseToken parses and validates a JWT token string and returns the session it names.
// The returned session still has to be checked against the registry.
func ParseToken(tokenStr, secret string) (domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return domain.Session{}, err // Return error if parsing fails
	}
	// Validate token and extract claims
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Session{}, jwt.ErrSignatureInvalid
	}
	if claims.ID == "" || claims.UserID == 0 {
		return domain.Session{}, errors.New("token does not name a session")
	}
	sess := domain.Session{ID: claims.ID, UserID: claims.UserID}
	if claims.IssuedAt != nil {
		sess.CreatedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
