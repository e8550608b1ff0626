package supabase

import (
	"context"
	"encoding/json"
	"time"

	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	apperrors "fishdex/pkg/errors"
)

const progressTable = "user_progress"

// progressRow mirrors the user_progress table. Collected ids are kept
// as an encoded JSON string column, matching the historical schema.
type progressRow struct {
	UserID       string    `json:"user_id"`
	CollectedIDs string    `json:"collected_entry_ids"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProgressRepository implements ports.ProgressRepository on Supabase
type ProgressRepository struct {
	client *supa.Client
	logger *zap.Logger
}

// NewProgressRepository creates a Supabase-backed progress repository
func NewProgressRepository(client *supa.Client, logger *zap.Logger) *ProgressRepository {
	return &ProgressRepository{client: client, logger: logger}
}

// Get returns the user's collected entry ids, empty when unknown
func (r *ProgressRepository) Get(ctx context.Context, userID string) ([]string, error) {
	var rows []progressRow
	_, err := r.client.From(progressTable).
		Select("user_id,collected_entry_ids,updated_at", "", false).
		Eq("user_id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get progress", err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return decodeCollectedIDs(rows[0].CollectedIDs, r.logger), nil
}

// Save upserts the user's collected entry ids
func (r *ProgressRepository) Save(ctx context.Context, userID string, entryIDs []string) error {
	payload, err := json.Marshal(entryIDs)
	if err != nil {
		return apperrors.NewInternalError("failed to encode collection").WithCause(err)
	}

	row := progressRow{
		UserID:       userID,
		CollectedIDs: string(payload),
		UpdatedAt:    time.Now().UTC(),
	}
	_, _, err = r.client.From(progressTable).
		Upsert(row, "user_id", "", "").
		Execute()
	if err != nil {
		return apperrors.NewDatabaseError("save progress", err)
	}
	return nil
}

// decodeCollectedIDs tolerates malformed stored payloads, returning an
// empty collection instead of failing the read.
func decodeCollectedIDs(encoded string, logger *zap.Logger) []string {
	if encoded == "" {
		return []string{}
	}
	var raw []interface{}
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		logger.Warn("malformed collection payload in store", zap.Error(err))
		return []string{}
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids
}
