package sync

import (
	"context"

	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/domain/identity"
	"fishdex/domain/marks"
)

// Migrator carries locally cached anonymous marks over to an
// authenticated identity. Anonymous identities have no server-side
// account, so their marks exist only in this process; the migration is
// the sole path that preserves them.
type Migrator struct {
	store   *marks.Store
	buffer  *marks.PendingBuffer
	gateway ports.MarkGateway
	logger  *zap.Logger
}

// NewMigrator creates a migration routine over the session cache
func NewMigrator(store *marks.Store, buffer *marks.PendingBuffer, gateway ports.MarkGateway, logger *zap.Logger) *Migrator {
	return &Migrator{store: store, buffer: buffer, gateway: gateway, logger: logger}
}

// Migrate re-submits every cached mark of the outgoing anonymous
// identity under the incoming identity, one create per mark so each
// failure stays isolated. A failed item is skipped, never retried;
// partial loss is the accepted trade-off for not blocking login on the
// network. After attempting an entity's collection it is cleared
// locally regardless of per-item outcome. Runs synchronously so the
// new identity's bootstrap starts from a clean cache.
func (m *Migrator) Migrate(ctx context.Context, outgoing, incoming identity.Identity) {
	entities := m.store.Entities()
	var attempted, failed int

	for _, entityID := range entities {
		for _, mark := range m.store.Get(entityID) {
			attempted++
			if _, err := m.gateway.Create(ctx, incoming.ID(), mark); err != nil {
				failed++
				m.logger.Warn("mark migration item failed, skipping",
					zap.String("entryID", entityID),
					zap.String("address", mark.Address),
					zap.Error(err),
				)
			}
		}
		m.store.Remove(entityID)
	}

	// Buffered pendings of the outgoing identity were present in the
	// store and migrated above; drop them so a later flush cannot
	// resubmit them under the wrong identity.
	for _, item := range m.buffer.Drain() {
		if item.Identity != outgoing.ID() {
			m.buffer.Enqueue(item.Identity, item.Mark)
		}
	}

	m.logger.Info("anonymous mark migration finished",
		zap.String("from", outgoing.ID()),
		zap.String("to", incoming.ID()),
		zap.Int("entries", len(entities)),
		zap.Int("attempted", attempted),
		zap.Int("failed", failed),
	)
}
