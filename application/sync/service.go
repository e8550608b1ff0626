// Package sync implements the client-side mark cache orchestration:
// bootstrap loads, optimistic single adds, batched flushes of the
// pending buffer, and the one-time identity migration. There is no
// background retry scheduler anywhere in this package; a failed flush
// stays failed until a caller explicitly re-attempts.
package sync

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/domain/identity"
	"fishdex/domain/marks"
)

// Service orchestrates the mark store, the pending write buffer and
// the remote mark gateway for the session's active identity.
type Service struct {
	store    *marks.Store
	buffer   *marks.PendingBuffer
	gateway  ports.MarkGateway
	geocoder ports.Geocoder
	session  *identity.Session
	logger   *zap.Logger

	inflight sync.WaitGroup
}

// NewService wires a sync service to a session. The identity
// transition hook runs the migration routine before any bootstrap
// under the new identity, and resets the cache when a logout mints a
// fresh anonymous identity.
func NewService(
	store *marks.Store,
	buffer *marks.PendingBuffer,
	gateway ports.MarkGateway,
	geocoder ports.Geocoder,
	session *identity.Session,
	logger *zap.Logger,
) *Service {
	s := &Service{
		store:    store,
		buffer:   buffer,
		gateway:  gateway,
		geocoder: geocoder,
		session:  session,
		logger:   logger,
	}

	migrator := NewMigrator(store, buffer, gateway, logger)
	session.OnTransition(func(outgoing, incoming identity.Identity) {
		if outgoing.Anonymous() && incoming.Authenticated() {
			migrator.Migrate(context.Background(), outgoing, incoming)
			return
		}
		if incoming.Anonymous() {
			// Logout: the new visitor starts with an empty cache.
			s.store.Clear()
			s.buffer.Drain()
		}
	})

	return s
}

// Bootstrap loads the remote mark list for one entry (or all entries
// when entityID is empty) into the store. On failure the store is left
// untouched and the error is returned for display; no retry is
// scheduled. A cancelled context aborts without mutating the store.
func (s *Service) Bootstrap(ctx context.Context, entityID string) error {
	identityID := s.session.Current().ID()

	list, err := s.gateway.List(ctx, identityID, entityID)
	if err != nil {
		s.logger.Warn("mark bootstrap failed",
			zap.String("userID", identityID),
			zap.String("entryID", entityID),
			zap.Error(err),
		)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if entityID != "" {
		s.store.Replace(entityID, list)
		return nil
	}

	byEntity := make(map[string][]marks.Mark)
	for _, m := range list {
		byEntity[m.EntityID] = append(byEntity[m.EntityID], m)
	}
	for id, entityMarks := range byEntity {
		s.store.Replace(id, entityMarks)
	}
	return nil
}

// AddMark inserts a provisional mark optimistically and issues a
// single create in the background. The returned mark is the
// provisional one; on acknowledgment the store entry is swapped to the
// server record, matched by provisional id. On failure the mark stays
// visible and pending; the next batch flush is its only healing path.
func (s *Service) AddMark(ctx context.Context, entityID, address string) (marks.Mark, error) {
	provisional, err := marks.NewProvisionalMark(entityID, address)
	if err != nil {
		return marks.Mark{}, err
	}

	identityID := s.session.Current().ID()
	s.store.Insert(entityID, provisional)
	s.buffer.Enqueue(identityID, provisional)

	// Once issued, the create runs to completion or failure even if
	// the caller's context is cancelled.
	createCtx := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.confirmCreate(createCtx, identityID, provisional)
	}()

	return provisional, nil
}

func (s *Service) confirmCreate(ctx context.Context, identityID string, provisional marks.Mark) {
	record, err := s.gateway.Create(ctx, identityID, provisional)
	if err != nil {
		s.logger.Warn("mark create failed, mark stays pending",
			zap.String("userID", identityID),
			zap.String("entryID", provisional.EntityID),
			zap.String("tempID", provisional.ID.String()),
			zap.Error(err),
		)
		return
	}

	s.buffer.Ack(provisional.ID.String())
	s.store.Confirm(provisional.EntityID, provisional.ID.String(), record)
}

// FlushPending drains the buffer, dedups the drained marks by
// (entry, address) and persists them in one batch call. On success the
// returned server records are reconciled into the store. On failure
// the drained marks are not re-enqueued; guaranteed delivery requires
// an explicit re-attempt by the caller.
func (s *Service) FlushPending(ctx context.Context) error {
	drained := s.buffer.Drain()
	if len(drained) == 0 {
		return nil
	}

	identityID := s.session.Current().ID()
	batch := make([]marks.Mark, 0, len(drained))
	for _, item := range drained {
		if item.Identity != identityID {
			// Stale entries from a previous identity; their store
			// collections were handled by migration already.
			s.logger.Warn("dropping pending mark from previous identity",
				zap.String("tempID", item.ID.String()),
				zap.String("owner", item.Identity),
			)
			continue
		}
		batch = append(batch, item.Mark)
	}
	batch = marks.DedupByEntityAddress(batch)
	if len(batch) == 0 {
		return nil
	}

	records, err := s.gateway.BatchCreate(context.WithoutCancel(ctx), identityID, batch)
	if err != nil {
		s.logger.Warn("pending mark flush failed, marks not re-enqueued",
			zap.String("userID", identityID),
			zap.Int("count", len(batch)),
			zap.Error(err),
		)
		return err
	}

	s.reconcile(batch, records)
	return nil
}

// reconcile swaps flushed provisional marks for their server records,
// matched by (entry, address) since batch responses carry no temp ids.
func (s *Service) reconcile(sent []marks.Mark, records []marks.Mark) {
	type key struct{ entity, address string }
	tempByKey := make(map[key]string, len(sent))
	for _, m := range sent {
		tempByKey[key{m.EntityID, m.Address}] = m.ID.String()
	}

	for _, record := range records {
		tempID, ok := tempByKey[key{record.EntityID, record.Address}]
		if !ok {
			continue
		}
		// An evicted provisional mark is not resurrected.
		s.store.Confirm(record.EntityID, tempID, record)
	}
}

// MarksForEntry returns the cached marks for one catalog entry,
// newest first. Unknown entries yield an empty list.
func (s *Service) MarksForEntry(entityID string) []marks.Mark {
	return s.store.Get(entityID)
}

// RecordMark resolves coordinates into an address and adds the mark.
// A resolution failure creates no mark and is surfaced to the caller.
func (s *Service) RecordMark(ctx context.Context, entityID string, lat, lng float64) (marks.Mark, error) {
	resolved, err := s.geocoder.Resolve(ctx, lat, lng)
	if err != nil {
		return marks.Mark{}, err
	}
	return s.AddMark(ctx, entityID, resolved.Address)
}

// FlushOnViewClose flushes the pending buffer when a view unmounts.
// Failures are logged, not surfaced; the view is going away.
func (s *Service) FlushOnViewClose() {
	if err := s.FlushPending(context.Background()); err != nil {
		s.logger.Warn("flush on view close failed", zap.Error(err))
	}
}

// Wait blocks until all in-flight single-create confirmations settle.
// Used on shutdown and by tests.
func (s *Service) Wait() {
	s.inflight.Wait()
}
