package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/adeelchainz/base-server/pkg/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `
	id, name, email, phone_country_code, phone_iso_code, phone_international_number,
	timezone, password_hash, role,
	confirmation_status, confirmation_token, confirmation_code, confirmed_at,
	password_reset_token, password_reset_expiry, password_reset_last_reset_at,
	last_login_at, consent, created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	// Generate UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PhoneNumber.CountryCode,
		user.PhoneNumber.ISOCode,
		user.PhoneNumber.InternationalNumber,
		user.Timezone,
		user.PasswordHash,
		user.Role,
		user.Confirmation.Status,
		user.Confirmation.Token,
		user.Confirmation.Code,
		user.Confirmation.ConfirmedAt,
		user.PasswordReset.Token,
		user.PasswordReset.Expiry,
		user.PasswordReset.LastResetAt,
		user.LastLoginAt,
		user.Consent,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email, including the password hash
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByConfirmation retrieves the user holding the given confirmation token and code
func (r *userRepository) GetByConfirmation(ctx context.Context, token, code string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE confirmation_token = $1 AND confirmation_code = $2`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, token, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with confirmation token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by confirmation: %w", err)
	}

	return user, nil
}

// ExistsByEmail reports whether a user with the email is registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// Confirm marks a pending account as confirmed. A user that is already
// confirmed is left untouched and reported as not found.
func (r *userRepository) Confirm(ctx context.Context, userID string, confirmedAt time.Time) error {
	query := `
		UPDATE users
		SET confirmation_status = TRUE, confirmed_at = $2, updated_at = $2
		WHERE id = $1 AND confirmation_status = FALSE
	`

	return r.execSingle(ctx, userID, query, userID, confirmedAt)
}

// UpdateLastLogin updates the last login timestamp for a user
func (r *userRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	query := `
		UPDATE users
		SET last_login_at = $2, updated_at = $2
		WHERE id = $1
	`

	return r.execSingle(ctx, userID, query, userID, at)
}

func (r *userRepository) execSingle(ctx context.Context, userID, query string, args ...any) error {
	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var (
		confirmedAt, lastLoginAt      sql.NullTime
		resetExpiry, resetLastResetAt sql.NullTime
		resetToken                    sql.NullString
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PhoneNumber.CountryCode,
		&user.PhoneNumber.ISOCode,
		&user.PhoneNumber.InternationalNumber,
		&user.Timezone,
		&user.PasswordHash,
		&user.Role,
		&user.Confirmation.Status,
		&user.Confirmation.Token,
		&user.Confirmation.Code,
		&confirmedAt,
		&resetToken,
		&resetExpiry,
		&resetLastResetAt,
		&lastLoginAt,
		&user.Consent,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Confirmation.ConfirmedAt = nullTime(confirmedAt)
	user.LastLoginAt = nullTime(lastLoginAt)
	user.PasswordReset.Expiry = nullTime(resetExpiry)
	user.PasswordReset.LastResetAt = nullTime(resetLastResetAt)
	if resetToken.Valid {
		user.PasswordReset.Token = &resetToken.String
	}

	return user, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
