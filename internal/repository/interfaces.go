package repository

import (
	"context"
	"time"

	"github.com/adeelchainz/base-server/internal/domain"
)

// UserRepository is the credential store
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByConfirmation(ctx context.Context, token, code string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Confirm(ctx context.Context, userID string, confirmedAt time.Time) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}

// TokenRepository stores issued refresh tokens
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	// DeleteByToken removes the token. Deleting an absent token is not an error.
	DeleteByToken(ctx context.Context, token string) error
}
