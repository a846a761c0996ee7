package service

import (
	"context"
	"time"

	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/adeelchainz/base-server/internal/dto"
	"github.com/adeelchainz/base-server/internal/notify"
)

// AuthService drives the account lifecycle: register, confirm, login, logout
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AccountResponse, error)
	ConfirmRegistration(ctx context.Context, token, code string) (*dto.AccountResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}

// TokenSigner issues and verifies session tokens
type TokenSigner interface {
	GenerateAccessToken(userID string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	ValidateAccessToken(token string) (*domain.TokenClaims, error)
}

// Notifier accepts outbound messages without waiting for delivery
type Notifier interface {
	Submit(msg notify.Message) bool
}

type TokenBlacklist interface {
	AddToken(ctx context.Context, token string, expiry time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}
