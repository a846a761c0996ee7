package dto

import "github.com/adeelchainz/base-server/internal/domain"

// AccountResponse is returned by registration and confirmation
type AccountResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"_id"`
}

// LoginResponse carries both session tokens and the authenticated user
type LoginResponse struct {
	Success      bool         `json:"success"`
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}
