package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type tokenKey struct {
	secret []byte
	expiry time.Duration
}

// JWTManager signs and verifies session tokens. Access and refresh tokens use
// independent secrets and lifetimes.
type JWTManager struct {
	access  tokenKey
	refresh tokenKey
	now     func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(accessSecret, refreshSecret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		access:  tokenKey{secret: []byte(accessSecret), expiry: accessTokenExpiry},
		refresh: tokenKey{secret: []byte(refreshSecret), expiry: refreshTokenExpiry},
		now:     time.Now,
	}
}

// GenerateAccessToken generates a new access token
func (j *JWTManager) GenerateAccessToken(userID string) (string, error) {
	token, err := j.sign(j.access, userID)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken generates a new refresh token
func (j *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	token, err := j.sign(j.refresh, userID)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

// ValidateAccessToken verifies an access token and returns its claims
func (j *JWTManager) ValidateAccessToken(tokenString string) (*domain.TokenClaims, error) {
	return j.validate(j.access, tokenString)
}

func (j *JWTManager) sign(key tokenKey, userID string) (string, error) {
	now := j.now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
}

func (j *JWTManager) validate(key tokenKey, tokenString string) (*domain.TokenClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key.secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId", ErrInvalidToken)
	}

	result := &domain.TokenClaims{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}

	return result, nil
}
