package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

type fakeMarkRepo struct {
	records []ports.MarkRecord
}

func (r *fakeMarkRepo) key(rec ports.MarkRecord) string {
	return rec.UserID + "/" + rec.EntryID + "/" + rec.Address
}

func (r *fakeMarkRepo) List(ctx context.Context, userID, entryID string) ([]ports.MarkRecord, error) {
	out := make([]ports.MarkRecord, 0)
	for _, rec := range r.records {
		if rec.UserID == userID && (entryID == "" || rec.EntryID == entryID) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeMarkRepo) Upsert(ctx context.Context, rec ports.MarkRecord) (ports.MarkRecord, error) {
	for _, existing := range r.records {
		if r.key(existing) == r.key(rec) {
			return existing, nil
		}
	}
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *fakeMarkRepo) BatchUpsert(ctx context.Context, recs []ports.MarkRecord) ([]ports.MarkRecord, error) {
	out := make([]ports.MarkRecord, 0, len(recs))
	for _, rec := range recs {
		stored, err := r.Upsert(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (r *fakeMarkRepo) Delete(ctx context.Context, userID, markID string) error {
	for i, rec := range r.records {
		if rec.UserID == userID && rec.ID == markID {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("mark")
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []ports.ActivityEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, event ports.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) ofType(eventType string) []ports.ActivityEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.ActivityEvent, 0)
	for _, event := range p.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newTestMarkService(t *testing.T) (*MarkService, *fakeMarkRepo, *fakeProgressRepo, *capturingPublisher) {
	t.Helper()
	repo := &fakeMarkRepo{}
	progress := newFakeProgressRepo()
	publisher := &capturingPublisher{}
	return NewMarkService(repo, progress, publisher, zap.NewNop()), repo, progress, publisher
}

func TestRecord_PersistsAndUnlocksEntry(t *testing.T) {
	service, _, progress, publisher := newTestMarkService(t)

	record, err := service.Record(context.Background(), "user-1", "carp", "Pier A", time.Now().UTC())

	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, []string{"carp"}, progress.sets["user-1"])
	assert.Len(t, publisher.ofType(ports.EventMarkRecorded), 1)
	assert.Len(t, publisher.ofType(ports.EventEntryUnlocked), 1)
}

func TestRecord_ResubmissionReturnsExisting(t *testing.T) {
	service, repo, _, _ := newTestMarkService(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := service.Record(context.Background(), "user-1", "carp", "Pier A", at)
	require.NoError(t, err)
	second, err := service.Record(context.Background(), "user-1", "carp", "Pier A", at.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.RecordedAt.Equal(first.RecordedAt))
	assert.Len(t, repo.records, 1)
}

func TestRecord_SecondMarkSameEntryDoesNotUnlockAgain(t *testing.T) {
	service, _, _, publisher := newTestMarkService(t)

	_, err := service.Record(context.Background(), "user-1", "carp", "Pier A", time.Now().UTC())
	require.NoError(t, err)
	_, err = service.Record(context.Background(), "user-1", "carp", "Pier B", time.Now().UTC())
	require.NoError(t, err)

	assert.Len(t, publisher.ofType(ports.EventEntryUnlocked), 1)
	assert.Len(t, publisher.ofType(ports.EventMarkRecorded), 2)
}

func TestRecord_ValidatesInput(t *testing.T) {
	service, _, _, _ := newTestMarkService(t)

	_, err := service.Record(context.Background(), "user-1", "", "Pier A", time.Time{})
	assert.True(t, apperrors.IsValidation(err))

	_, err = service.Record(context.Background(), "user-1", "carp", "", time.Time{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestBatchRecord_AssignsIdentityAndIDs(t *testing.T) {
	service, _, progress, _ := newTestMarkService(t)

	records, err := service.BatchRecord(context.Background(), "user-1", []ports.MarkRecord{
		{EntryID: "carp", Address: "Pier A"},
		{EntryID: "perch", Address: "Dock"},
	})

	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, "user-1", record.UserID)
		assert.False(t, record.RecordedAt.IsZero())
	}
	assert.ElementsMatch(t, []string{"carp", "perch"}, progress.sets["user-1"])
}

func TestBatchRecord_EmptyIsNoop(t *testing.T) {
	service, repo, _, _ := newTestMarkService(t)

	records, err := service.BatchRecord(context.Background(), "user-1", nil)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, repo.records)
}

func TestDelete_MissingMarkIsNotFound(t *testing.T) {
	service, _, _, _ := newTestMarkService(t)

	err := service.Delete(context.Background(), "user-1", "missing")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestDelete_RemovesOwnMarkOnly(t *testing.T) {
	service, repo, _, _ := newTestMarkService(t)
	record, err := service.Record(context.Background(), "user-1", "carp", "Pier A", time.Now().UTC())
	require.NoError(t, err)

	err = service.Delete(context.Background(), "user-2", record.ID)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, service.Delete(context.Background(), "user-1", record.ID))
	assert.Empty(t, repo.records)
}
