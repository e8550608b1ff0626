package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fishdex/domain/identity"
	"fishdex/domain/marks"
)

func seedAnonymousCache(t *testing.T, store *marks.Store, buffer *marks.PendingBuffer, anonID string) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	carp, err := marks.NewConfirmedMark("r1", "carp", "Pier A", base)
	require.NoError(t, err)
	store.Replace("carp", []marks.Mark{carp})

	pending, err := marks.NewProvisionalMark("perch", "Dock")
	require.NoError(t, err)
	store.Insert("perch", pending)
	buffer.Enqueue(anonID, pending)
}

func TestMigrate_ResubmitsAllMarksUnderNewIdentity(t *testing.T) {
	gateway := newFakeGateway()
	store := marks.NewStore(3)
	buffer := marks.NewPendingBuffer()
	session := identity.NewSession()
	anonymous := session.Current()
	seedAnonymousCache(t, store, buffer, anonymous.ID())

	incoming, err := identity.NewAuthenticated("13800138000", "13800138000")
	require.NoError(t, err)

	migrator := NewMigrator(store, buffer, gateway, zap.NewNop())
	migrator.Migrate(context.Background(), anonymous, incoming)

	require.Len(t, gateway.created, 2)
	for _, got := range gateway.createdFor {
		assert.Equal(t, "13800138000", got)
	}
	assert.Empty(t, store.Entities())
	assert.Equal(t, 0, buffer.Len())
}

func TestMigrate_FailedItemIsSkippedAndCollectionStillCleared(t *testing.T) {
	gateway := newFakeGateway()
	gateway.createErr = errors.New("network down")
	store := marks.NewStore(3)
	buffer := marks.NewPendingBuffer()
	session := identity.NewSession()
	anonymous := session.Current()
	seedAnonymousCache(t, store, buffer, anonymous.ID())

	incoming, err := identity.NewAuthenticated("13800138000", "13800138000")
	require.NoError(t, err)

	migrator := NewMigrator(store, buffer, gateway, zap.NewNop())
	migrator.Migrate(context.Background(), anonymous, incoming)

	assert.Empty(t, gateway.created)
	assert.Empty(t, store.Entities())
	assert.Equal(t, 0, buffer.Len())
}

func TestMigrate_KeepsForeignPendingItems(t *testing.T) {
	gateway := newFakeGateway()
	store := marks.NewStore(3)
	buffer := marks.NewPendingBuffer()

	foreign, err := marks.NewProvisionalMark("carp", "Pier B")
	require.NoError(t, err)
	buffer.Enqueue("someone-else", foreign)

	session := identity.NewSession()
	anonymous := session.Current()
	incoming, err := identity.NewAuthenticated("13800138000", "13800138000")
	require.NoError(t, err)

	migrator := NewMigrator(store, buffer, gateway, zap.NewNop())
	migrator.Migrate(context.Background(), anonymous, incoming)

	require.Equal(t, 1, buffer.Len())
	drained := buffer.Drain()
	assert.Equal(t, "someone-else", drained[0].Identity)
}

func TestLogin_RunsMigrationBeforeReturning(t *testing.T) {
	gateway := newFakeGateway()
	_, store, buffer, session := newTestService(t, gateway)
	anonymous := session.Current()
	seedAnonymousCache(t, store, buffer, anonymous.ID())

	incoming, err := identity.NewAuthenticated("13800138000", "13800138000")
	require.NoError(t, err)
	require.NoError(t, session.Login(incoming))

	// Login returned, so the synchronous migration finished: the cache
	// is clean and ready for a bootstrap under the new identity.
	assert.Empty(t, store.Entities())
	assert.Equal(t, 0, buffer.Len())
	require.Len(t, gateway.created, 2)
}
