package services

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fishdex/application/ports"
	"fishdex/pkg/auth"
	apperrors "fishdex/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^1\d{10}$`)

// AccountService binds phone credentials to catalog identities and
// recovers progress through them. The bound phone number becomes the
// authenticated identity's handle.
type AccountService struct {
	profiles ports.ProfileRepository
	progress ports.ProgressRepository
	tokens   *auth.JWTManager
	logger   *zap.Logger
}

// NewAccountService creates an account service
func NewAccountService(
	profiles ports.ProfileRepository,
	progress ports.ProgressRepository,
	tokens *auth.JWTManager,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		profiles: profiles,
		progress: progress,
		tokens:   tokens,
		logger:   logger,
	}
}

// BindResult is the outcome of a successful phone binding
type BindResult struct {
	UserID string
	Phone  string
	Token  string
}

// Bind creates a credential binding for the given phone. The visitor's
// progress recorded under anonUserID is copied to the new identity so
// catalog unlocks survive the transition; marks travel separately
// through the client-side migration routine.
func (s *AccountService) Bind(ctx context.Context, phone, password, anonUserID string) (BindResult, error) {
	if !phonePattern.MatchString(phone) {
		return BindResult{}, apperrors.NewValidationError("phone must be an 11-digit mobile number")
	}
	if len(password) < 6 {
		return BindResult{}, apperrors.NewValidationError("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return BindResult{}, apperrors.NewInternalError("failed to hash password").WithCause(err)
	}

	now := time.Now().UTC()
	profile := ports.Profile{
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return BindResult{}, err
	}

	if anonUserID != "" {
		if collected, err := s.progress.Get(ctx, anonUserID); err == nil && len(collected) > 0 {
			if err := s.progress.Save(ctx, phone, collected); err != nil {
				s.logger.Warn("failed to carry progress to bound account",
					zap.String("phone", phone),
					zap.Error(err),
				)
			}
		}
	}

	token, err := s.tokens.Issue(phone, phone)
	if err != nil {
		return BindResult{}, apperrors.NewInternalError("failed to issue session token").WithCause(err)
	}

	return BindResult{UserID: phone, Phone: phone, Token: token}, nil
}

// RecoverResult is the outcome of a successful credential login
type RecoverResult struct {
	UserID    string
	Phone     string
	Token     string
	Collected []string
}

// Recover verifies credentials and returns the bound identity together
// with its collection snapshot.
func (s *AccountService) Recover(ctx context.Context, phone, password string) (RecoverResult, error) {
	if !phonePattern.MatchString(phone) {
		return RecoverResult{}, apperrors.NewValidationError("phone must be an 11-digit mobile number")
	}

	profile, err := s.profiles.GetByPhone(ctx, phone)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return RecoverResult{}, apperrors.NewUnauthorizedError("no binding for this phone")
		}
		return RecoverResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return RecoverResult{}, apperrors.NewUnauthorizedError("invalid credentials")
	}

	collected, err := s.progress.Get(ctx, phone)
	if err != nil {
		s.logger.Warn("failed to load collection during recover",
			zap.String("phone", phone),
			zap.Error(err),
		)
		collected = nil
	}

	token, err := s.tokens.Issue(phone, phone)
	if err != nil {
		return RecoverResult{}, apperrors.NewInternalError("failed to issue session token").WithCause(err)
	}

	return RecoverResult{UserID: phone, Phone: phone, Token: token, Collected: collected}, nil
}
