package marks

import (
	"errors"
	"time"

	"github.com/google/uuid"

	pkgerrors "fishdex/pkg/errors"
)

// MarkID is a value object identifying a location mark. A mark starts
// life with a client-generated provisional id and is swapped to the
// server-assigned id once the remote store acknowledges it. The two
// states are kept explicit so reconciliation can match by provisional
// id instead of list position.
type MarkID struct {
	value     string
	confirmed bool
}

// NewProvisionalID creates a client-side id for a mark that has not
// been acknowledged by the remote store yet.
func NewProvisionalID() MarkID {
	return MarkID{value: uuid.New().String(), confirmed: false}
}

// NewConfirmedID wraps a server-assigned mark id.
func NewConfirmedID(serverID string) (MarkID, error) {
	if serverID == "" {
		return MarkID{}, errors.New("server mark id cannot be empty")
	}
	return MarkID{value: serverID, confirmed: true}, nil
}

// String returns the raw id value
func (id MarkID) String() string {
	return id.value
}

// Provisional reports whether the id is still client-generated
func (id MarkID) Provisional() bool {
	return !id.confirmed
}

// Confirmed reports whether the id was assigned by the remote store
func (id MarkID) Confirmed() bool {
	return id.confirmed
}

// Equals checks if two MarkIDs are equal
func (id MarkID) Equals(other MarkID) bool {
	return id.value == other.value && id.confirmed == other.confirmed
}

// IsZero checks if the MarkID is the zero value
func (id MarkID) IsZero() bool {
	return id.value == ""
}

// Mark is a user-recorded address associated with one catalog entry.
type Mark struct {
	ID         MarkID
	EntityID   string
	Address    string
	RecordedAt time.Time
}

// NewProvisionalMark builds a mark for optimistic insertion, timestamped
// now and carrying a provisional id.
func NewProvisionalMark(entityID, address string) (Mark, error) {
	if entityID == "" {
		return Mark{}, pkgerrors.NewValidationError("entity id cannot be empty")
	}
	if address == "" {
		return Mark{}, pkgerrors.NewValidationError("address cannot be empty")
	}
	return Mark{
		ID:         NewProvisionalID(),
		EntityID:   entityID,
		Address:    address,
		RecordedAt: time.Now().UTC(),
	}, nil
}

// NewConfirmedMark reconstructs a mark from a remote store record.
func NewConfirmedMark(serverID, entityID, address string, recordedAt time.Time) (Mark, error) {
	id, err := NewConfirmedID(serverID)
	if err != nil {
		return Mark{}, pkgerrors.NewValidationError("server mark id cannot be empty")
	}
	if entityID == "" {
		return Mark{}, pkgerrors.NewValidationError("entity id cannot be empty")
	}
	return Mark{
		ID:         id,
		EntityID:   entityID,
		Address:    address,
		RecordedAt: recordedAt,
	}, nil
}

// Pending reports whether the mark still awaits remote acknowledgment
func (m Mark) Pending() bool {
	return m.ID.Provisional()
}

// Confirmed returns a copy of the mark carrying the server identity.
// Confirmation updates identity only, never content.
func (m Mark) Confirmed(serverID string) (Mark, error) {
	id, err := NewConfirmedID(serverID)
	if err != nil {
		return Mark{}, err
	}
	m.ID = id
	return m, nil
}
