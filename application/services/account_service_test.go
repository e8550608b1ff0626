package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/pkg/auth"
	apperrors "fishdex/pkg/errors"
)

type fakeProfileRepo struct {
	profiles map[string]ports.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]ports.Profile)}
}

func (r *fakeProfileRepo) GetByPhone(ctx context.Context, phone string) (ports.Profile, error) {
	profile, ok := r.profiles[phone]
	if !ok {
		return ports.Profile{}, apperrors.NewNotFoundError("profile")
	}
	return profile, nil
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile ports.Profile) error {
	if _, exists := r.profiles[profile.Phone]; exists {
		return apperrors.NewConflictError("phone is already bound")
	}
	r.profiles[profile.Phone] = profile
	return nil
}

type fakeProgressRepo struct {
	sets map[string][]string
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{sets: make(map[string][]string)}
}

func (r *fakeProgressRepo) Get(ctx context.Context, userID string) ([]string, error) {
	collected, ok := r.sets[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("progress")
	}
	return collected, nil
}

func (r *fakeProgressRepo) Save(ctx context.Context, userID string, entryIDs []string) error {
	r.sets[userID] = entryIDs
	return nil
}

func newTestAccountService(t *testing.T) (*AccountService, *fakeProfileRepo, *fakeProgressRepo) {
	t.Helper()
	tokens, err := auth.NewJWTManager(auth.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "fishdex",
		Audience:  "fishdex-api",
		TokenTTL:  time.Hour,
	})
	require.NoError(t, err)

	profiles := newFakeProfileRepo()
	progress := newFakeProgressRepo()
	return NewAccountService(profiles, progress, tokens, zap.NewNop()), profiles, progress
}

func TestBind_CreatesBindingAndCarriesProgress(t *testing.T) {
	service, profiles, progress := newTestAccountService(t)
	progress.sets["anon-1"] = []string{"carp", "perch"}

	result, err := service.Bind(context.Background(), "13800138000", "secret1", "anon-1")

	require.NoError(t, err)
	assert.Equal(t, "13800138000", result.UserID)
	assert.NotEmpty(t, result.Token)
	assert.Contains(t, profiles.profiles, "13800138000")
	assert.Equal(t, []string{"carp", "perch"}, progress.sets["13800138000"])
}

func TestBind_RejectsInvalidPhone(t *testing.T) {
	service, _, _ := newTestAccountService(t)

	_, err := service.Bind(context.Background(), "12345", "secret1", "anon-1")

	assert.True(t, apperrors.IsValidation(err))
}

func TestBind_RejectsShortPassword(t *testing.T) {
	service, _, _ := newTestAccountService(t)

	_, err := service.Bind(context.Background(), "13800138000", "123", "anon-1")

	assert.True(t, apperrors.IsValidation(err))
}

func TestBind_DuplicatePhoneConflicts(t *testing.T) {
	service, _, _ := newTestAccountService(t)
	_, err := service.Bind(context.Background(), "13800138000", "secret1", "")
	require.NoError(t, err)

	_, err = service.Bind(context.Background(), "13800138000", "other-pass", "")

	assert.True(t, apperrors.IsConflict(err))
}

func TestRecover_ReturnsIdentityAndCollection(t *testing.T) {
	service, _, progress := newTestAccountService(t)
	_, err := service.Bind(context.Background(), "13800138000", "secret1", "")
	require.NoError(t, err)
	progress.sets["13800138000"] = []string{"carp"}

	result, err := service.Recover(context.Background(), "13800138000", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "13800138000", result.UserID)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, []string{"carp"}, result.Collected)
}

func TestRecover_WrongPasswordIsUnauthorized(t *testing.T) {
	service, _, _ := newTestAccountService(t)
	_, err := service.Bind(context.Background(), "13800138000", "secret1", "")
	require.NoError(t, err)

	_, err = service.Recover(context.Background(), "13800138000", "wrong")

	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestRecover_UnknownPhoneIsUnauthorized(t *testing.T) {
	service, _, _ := newTestAccountService(t)

	_, err := service.Recover(context.Background(), "13800138000", "secret1")

	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestRecover_TokenValidatesWithIssuer(t *testing.T) {
	service, _, _ := newTestAccountService(t)
	_, err := service.Bind(context.Background(), "13800138000", "secret1", "")
	require.NoError(t, err)

	result, err := service.Recover(context.Background(), "13800138000", "secret1")
	require.NoError(t, err)

	tokens, err := auth.NewJWTManager(auth.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "fishdex",
		Audience:  "fishdex-api",
		TokenTTL:  time.Hour,
	})
	require.NoError(t, err)

	claims, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "13800138000", claims.UserID)
	assert.Equal(t, "13800138000", claims.Phone)
}
