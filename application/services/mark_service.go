package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

// MarkService owns the server side of mark persistence: idempotent
// upserts keyed by (user, entry, address), collection progress, and
// best-effort activity events.
type MarkService struct {
	marks    ports.MarkRepository
	progress ports.ProgressRepository
	events   ports.EventPublisher
	logger   *zap.Logger
}

// NewMarkService creates a mark service
func NewMarkService(
	marks ports.MarkRepository,
	progress ports.ProgressRepository,
	events ports.EventPublisher,
	logger *zap.Logger,
) *MarkService {
	return &MarkService{
		marks:    marks,
		progress: progress,
		events:   events,
		logger:   logger,
	}
}

// List returns the user's marks, optionally scoped to one entry
func (s *MarkService) List(ctx context.Context, userID, entryID string) ([]ports.MarkRecord, error) {
	return s.marks.List(ctx, userID, entryID)
}

// Record upserts one mark. Resubmitting the same (entry, address)
// returns the existing record unchanged.
func (s *MarkService) Record(ctx context.Context, userID, entryID, address string, recordedAt time.Time) (ports.MarkRecord, error) {
	if entryID == "" {
		return ports.MarkRecord{}, apperrors.NewValidationError("entry_id is required")
	}
	if address == "" {
		return ports.MarkRecord{}, apperrors.NewValidationError("address is required")
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	record, err := s.marks.Upsert(ctx, ports.MarkRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		EntryID:    entryID,
		Address:    address,
		RecordedAt: recordedAt,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return ports.MarkRecord{}, err
	}

	s.afterRecord(ctx, userID, []ports.MarkRecord{record})
	return record, nil
}

// BatchRecord applies Record semantics per item in one call. Items are
// persisted together; per-item conflicts resolve to the existing
// records rather than errors.
func (s *MarkService) BatchRecord(ctx context.Context, userID string, items []ports.MarkRecord) ([]ports.MarkRecord, error) {
	if len(items) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	prepared := make([]ports.MarkRecord, 0, len(items))
	for _, item := range items {
		if item.EntryID == "" || item.Address == "" {
			return nil, apperrors.NewValidationError("each mark needs entry_id and address")
		}
		if item.RecordedAt.IsZero() {
			item.RecordedAt = now
		}
		item.ID = uuid.New().String()
		item.UserID = userID
		item.CreatedAt = now
		prepared = append(prepared, item)
	}

	records, err := s.marks.BatchUpsert(ctx, prepared)
	if err != nil {
		return nil, err
	}

	s.afterRecord(ctx, userID, records)
	return records, nil
}

// Delete removes the user's mark by id
func (s *MarkService) Delete(ctx context.Context, userID, markID string) error {
	if markID == "" {
		return apperrors.NewValidationError("mark id is required")
	}
	return s.marks.Delete(ctx, userID, markID)
}

// afterRecord folds newly marked entries into the user's collected set
// and publishes activity events. Both are best-effort.
func (s *MarkService) afterRecord(ctx context.Context, userID string, records []ports.MarkRecord) {
	collected, err := s.progress.Get(ctx, userID)
	if err != nil && !apperrors.IsNotFound(err) {
		s.logger.Warn("failed to load progress after mark", zap.String("userID", userID), zap.Error(err))
		collected = nil
	}

	known := make(map[string]bool, len(collected))
	for _, id := range collected {
		known[id] = true
	}

	unlocked := make([]string, 0)
	for _, record := range records {
		s.publish(ctx, ports.ActivityEvent{
			Type:       ports.EventMarkRecorded,
			UserID:     userID,
			EntryID:    record.EntryID,
			OccurredAt: record.RecordedAt,
		})
		if !known[record.EntryID] {
			known[record.EntryID] = true
			collected = append(collected, record.EntryID)
			unlocked = append(unlocked, record.EntryID)
		}
	}

	if len(unlocked) == 0 {
		return
	}
	if err := s.progress.Save(ctx, userID, collected); err != nil {
		s.logger.Warn("failed to save progress after mark", zap.String("userID", userID), zap.Error(err))
		return
	}
	for _, entryID := range unlocked {
		s.publish(ctx, ports.ActivityEvent{
			Type:       ports.EventEntryUnlocked,
			UserID:     userID,
			EntryID:    entryID,
			OccurredAt: time.Now().UTC(),
		})
	}
}

func (s *MarkService) publish(ctx context.Context, event ports.ActivityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Debug("activity event publish failed",
			zap.String("type", event.Type),
			zap.Error(err))
	}
}
