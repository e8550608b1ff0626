package supabase

import (
	"context"
	"time"

	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

const profileTable = "user_profile"

// profileRow mirrors the user_profile table
type profileRow struct {
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileRepository implements ports.ProfileRepository on Supabase
type ProfileRepository struct {
	client *supa.Client
	logger *zap.Logger
}

// NewProfileRepository creates a Supabase-backed profile repository
func NewProfileRepository(client *supa.Client, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{client: client, logger: logger}
}

// GetByPhone returns the profile bound to a phone number
func (r *ProfileRepository) GetByPhone(ctx context.Context, phone string) (ports.Profile, error) {
	var rows []profileRow
	_, err := r.client.From(profileTable).
		Select("phone,password,created_at,updated_at", "", false).
		Eq("phone", phone).
		ExecuteTo(&rows)
	if err != nil {
		return ports.Profile{}, apperrors.NewDatabaseError("get profile", err)
	}
	if len(rows) == 0 {
		return ports.Profile{}, apperrors.NewNotFoundError("profile")
	}

	row := rows[0]
	return ports.Profile{
		Phone:        row.Phone,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// Create stores a new binding; an already-bound phone is a conflict
func (r *ProfileRepository) Create(ctx context.Context, profile ports.Profile) error {
	row := profileRow{
		Phone:        profile.Phone,
		PasswordHash: profile.PasswordHash,
		CreatedAt:    profile.CreatedAt,
		UpdatedAt:    profile.UpdatedAt,
	}
	_, _, err := r.client.From(profileTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("phone is already bound")
		}
		return apperrors.NewDatabaseError("create profile", err)
	}
	return nil
}
