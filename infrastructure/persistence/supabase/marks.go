// Package supabase implements the persistence ports against a
// Supabase Postgrest backend. This is the default store driver; the
// dynamodb package provides the same ports for AWS deployments.
package supabase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

const marksTable = "user_marks"

// markRow mirrors the user_marks table
type markRow struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	EntryID    string    `json:"entry_id"`
	Address    string    `json:"address"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r markRow) toRecord() ports.MarkRecord {
	return ports.MarkRecord{
		ID:         r.ID,
		UserID:     r.UserID,
		EntryID:    r.EntryID,
		Address:    r.Address,
		RecordedAt: r.RecordedAt,
		CreatedAt:  r.CreatedAt,
	}
}

// MarkRepository implements ports.MarkRepository on Supabase
type MarkRepository struct {
	client *supa.Client
	logger *zap.Logger
}

// NewMarkRepository creates a Supabase-backed mark repository
func NewMarkRepository(client *supa.Client, logger *zap.Logger) *MarkRepository {
	return &MarkRepository{client: client, logger: logger}
}

// List returns the user's marks newest first
func (r *MarkRepository) List(ctx context.Context, userID, entryID string) ([]ports.MarkRecord, error) {
	query := r.client.From(marksTable).
		Select("id,user_id,entry_id,address,recorded_at,created_at", "", false).
		Eq("user_id", userID)
	if entryID != "" {
		query = query.Eq("entry_id", entryID)
	}

	var rows []markRow
	if _, err := query.Order("recorded_at", &postgrest.OrderOpts{Ascending: false}).ExecuteTo(&rows); err != nil {
		return nil, apperrors.NewDatabaseError("list marks", err)
	}

	records := make([]ports.MarkRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// Upsert inserts the mark or returns the existing record for a
// duplicate (user, entry, address).
func (r *MarkRepository) Upsert(ctx context.Context, rec ports.MarkRecord) (ports.MarkRecord, error) {
	var existing []markRow
	_, err := r.client.From(marksTable).
		Select("id,user_id,entry_id,address,recorded_at,created_at", "", false).
		Eq("user_id", rec.UserID).
		Eq("entry_id", rec.EntryID).
		Eq("address", rec.Address).
		ExecuteTo(&existing)
	if err != nil {
		return ports.MarkRecord{}, apperrors.NewDatabaseError("lookup mark", err)
	}
	if len(existing) > 0 {
		return existing[0].toRecord(), nil
	}

	row := markRow{
		ID:         newRecordID(rec.ID),
		UserID:     rec.UserID,
		EntryID:    rec.EntryID,
		Address:    rec.Address,
		RecordedAt: rec.RecordedAt,
		CreatedAt:  time.Now().UTC(),
	}

	var inserted []markRow
	_, err = r.client.From(marksTable).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&inserted)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent insert of the same mark.
			return r.Upsert(ctx, rec)
		}
		return ports.MarkRecord{}, apperrors.NewDatabaseError("insert mark", err)
	}
	if len(inserted) == 0 {
		return row.toRecord(), nil
	}
	return inserted[0].toRecord(), nil
}

// BatchUpsert applies upsert semantics per item in one call
func (r *MarkRepository) BatchUpsert(ctx context.Context, recs []ports.MarkRecord) ([]ports.MarkRecord, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	rows := make([]markRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, markRow{
			ID:         newRecordID(rec.ID),
			UserID:     rec.UserID,
			EntryID:    rec.EntryID,
			Address:    rec.Address,
			RecordedAt: rec.RecordedAt,
			CreatedAt:  now,
		})
	}

	var saved []markRow
	_, err := r.client.From(marksTable).
		Upsert(rows, "user_id,entry_id,address", "representation", "").
		ExecuteTo(&saved)
	if err != nil {
		return nil, apperrors.NewDatabaseError("batch upsert marks", err)
	}

	records := make([]ports.MarkRecord, 0, len(saved))
	for _, row := range saved {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// Delete removes the user's mark by id
func (r *MarkRepository) Delete(ctx context.Context, userID, markID string) error {
	var deleted []markRow
	_, err := r.client.From(marksTable).
		Delete("representation", "").
		Eq("id", markID).
		Eq("user_id", userID).
		ExecuteTo(&deleted)
	if err != nil {
		return apperrors.NewDatabaseError("delete mark", err)
	}
	if len(deleted) == 0 {
		return apperrors.NewNotFoundError("mark")
	}
	return nil
}

// newRecordID keeps a caller-provided id when present so resubmission
// stays idempotent end to end.
func newRecordID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// isUniqueViolation detects a Postgres unique constraint error in a
// Postgrest response.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
