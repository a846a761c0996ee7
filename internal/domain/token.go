package domain

import "time"

// TokenClaims is the verified content of a session token
type TokenClaims struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshToken is a persisted refresh token, keyed by its signed value
type RefreshToken struct {
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
