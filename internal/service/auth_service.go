package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adeelchainz/base-server/internal/config"
	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/adeelchainz/base-server/internal/dto"
	"github.com/adeelchainz/base-server/internal/notify"
	"github.com/adeelchainz/base-server/internal/repository"
	"github.com/adeelchainz/base-server/internal/utils"
	"github.com/adeelchainz/base-server/pkg/observability"
	"go.uber.org/zap"
)

const otpLength = 6

const (
	MsgInvalidPhoneNumber = "Invalid phone number"
	MsgUserAlreadyExists  = "User already exists with this email"
	MsgUserNotFound       = "User is not found"
	MsgAlreadyConfirmed   = "Account is already confirmed"
	MsgInvalidCredentials = "Invalid email or password"
	MsgNotConfirmed       = "Account is not confirmed"
	MsgInvalidSession     = "Invalid or expired token"
)

// authService implements AuthService interface
type authService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	signer    TokenSigner
	hasher    PasswordHasher
	blacklist TokenBlacklist
	notifier  Notifier
	config    *config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(
	repos *repository.Repositories,
	signer TokenSigner,
	hasher PasswordHasher,
	blacklist TokenBlacklist,
	notifier Notifier,
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
) AuthService {
	return &authService{
		userRepo:  repos.User,
		tokenRepo: repos.Token,
		signer:    signer,
		hasher:    hasher,
		blacklist: blacklist,
		notifier:  notifier,
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Register creates a pending account and queues the confirmation email
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (_ *dto.AccountResponse, err error) {
	defer func() { s.record(ctx, "register", err) }()

	phone, err := utils.ParsePhoneNumber(req.PhoneNumber)
	if err != nil {
		return nil, domain.Validation(MsgInvalidPhoneNumber, err)
	}

	timezones := phone.Timezones()
	if len(timezones) == 0 {
		return nil, domain.Validation(MsgInvalidPhoneNumber)
	}

	email := utils.SanitizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, domain.Conflict(MsgUserAlreadyExists)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token := utils.GenerateConfirmationToken()
	code, err := utils.GenerateOTP(otpLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate confirmation code: %w", err)
	}

	user := &domain.User{
		Name:  req.Name,
		Email: email,
		PhoneNumber: domain.PhoneNumber{
			CountryCode:         phone.CountryCode,
			ISOCode:             phone.ISOCode,
			InternationalNumber: phone.InternationalNumber,
		},
		Timezone:     timezones[0],
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		Confirmation: domain.Confirmation{
			Status: false,
			Token:  token,
			Code:   code,
		},
		Consent: req.Consent,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.Conflict(MsgUserAlreadyExists, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	confirmationURL := notify.ConfirmationURL(s.config.Email.FrontendURL, token, code)
	s.notifier.Submit(notify.ConfirmationMessage(user.Name, user.Email, confirmationURL))

	s.logger.Info("User registered", zap.String("user_id", user.ID))

	return &dto.AccountResponse{Success: true, ID: user.ID}, nil
}

// ConfirmRegistration moves the account holding token and code to confirmed.
// Confirming twice is rejected.
func (s *authService) ConfirmRegistration(ctx context.Context, token, code string) (_ *dto.AccountResponse, err error) {
	defer func() { s.record(ctx, "confirm", err) }()

	user, err := s.userRepo.GetByConfirmation(ctx, token, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(MsgUserNotFound, err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Confirmation.Status {
		return nil, domain.InvalidState(MsgAlreadyConfirmed)
	}

	confirmedAt := s.now().UTC()
	if err := s.userRepo.Confirm(ctx, user.ID, confirmedAt); err != nil {
		// The conditional update found no pending row: confirmed concurrently
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.InvalidState(MsgAlreadyConfirmed, err)
		}
		return nil, fmt.Errorf("failed to confirm user: %w", err)
	}
	user.Confirm(confirmedAt)

	s.notifier.Submit(notify.WelcomeMessage(user.Email))

	s.logger.Info("User confirmed", zap.String("user_id", user.ID))

	return &dto.AccountResponse{Success: true, ID: user.ID}, nil
}

// Login verifies credentials, issues a token pair and stores the refresh token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (_ *dto.LoginResponse, err error) {
	defer func() { s.record(ctx, "login", err) }()

	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Spend the same time as a real comparison
			s.hasher.Compare(req.Password, s.dummyPasswordHash())
			return nil, domain.Auth(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Compare(req.Password, user.PasswordHash) {
		return nil, domain.Auth(MsgInvalidCredentials)
	}

	if s.config.Security.RequireConfirmedLogin && !user.IsConfirmed() {
		return nil, domain.Auth(MsgNotConfirmed)
	}

	accessToken, err := s.signer.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.signer.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	err = s.tokenRepo.Create(ctx, &domain.RefreshToken{
		Token:     refreshToken,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &dto.LoginResponse{
		Success:      true,
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout deletes the presented refresh token and blacklists the access token
// for the rest of its lifetime. Both steps are always attempted and their
// failures joined.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var errs []error

	if refreshToken != "" {
		if err := s.tokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete refresh token: %w", err))
		}
	}

	if accessToken != "" {
		claims, err := s.signer.ValidateAccessToken(accessToken)
		if err == nil {
			if ttl := claims.ExpiresAt.Sub(s.now()); ttl > 0 {
				if err := s.blacklist.AddToken(ctx, accessToken, ttl); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	err := errors.Join(errs...)
	s.record(ctx, "logout", err)
	return err
}

// GetUser gets user information
func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(MsgUserNotFound, err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ValidateToken verifies an access token and rejects revoked ones
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.signer.ValidateAccessToken(token)
	if err != nil {
		return nil, domain.Unauthenticated(MsgInvalidSession, err)
	}

	revoked, err := s.blacklist.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return nil, domain.Unauthenticated(MsgInvalidSession)
	}

	return claims, nil
}

func (s *authService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("dummy-password-for-unknown-users")
		if err != nil {
			s.logger.Warn("Failed to prepare dummy password hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *authService) record(ctx context.Context, operation string, err error) {
	outcome := observability.OutcomeSuccess
	if err != nil {
		outcome = observability.OutcomeFailure
	}
	s.metrics.RecordAuth(ctx, operation, outcome)

	if err != nil && domain.KindOf(err) == domain.KindInternal {
		s.logger.Error("Auth operation failed", zap.String("operation", operation), zap.Error(err))
	}
}
