package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/adeelchainz/base-server/pkg/database"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create stores a refresh token by its raw value
func (r *tokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, created_at, updated_at)
		VALUES ($1, $2, $3)
	`

	now := time.Now().UTC()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	if token.UpdatedAt.IsZero() {
		token.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query, token.Token, token.CreatedAt, token.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create token: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// DeleteByToken deletes a refresh token by its value
func (r *tokenRepository) DeleteByToken(ctx context.Context, token string) error {
	if _, err := r.db.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
