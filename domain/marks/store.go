package marks

import "sync"

// DefaultCapacity is the per-entry mark limit used when none is configured.
const DefaultCapacity = 3

// Store is the in-memory, session-scoped table of marks keyed by
// catalog entry. It holds the capacity, dedup and ordering invariants
// and nothing else; it never talks to the network. Instances are
// constructor-injected so tests can run against isolated stores.
type Store struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]Mark
}

// NewStore creates a store enforcing the given per-entry capacity.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		entries:  make(map[string][]Mark),
	}
}

// Capacity returns the per-entry mark limit
func (s *Store) Capacity() int {
	return s.capacity
}

// Get returns the ordered mark list for an entry. Unknown entries
// yield an empty slice, never an error. The returned slice is a copy.
func (s *Store) Get(entityID string) []Mark {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[entityID]
	out := make([]Mark, len(list))
	copy(out, list)
	return out
}

// Replace swaps an entry's list wholesale, applying the list
// invariants to the input. This is the bootstrap and reconciliation
// entry point.
func (s *Store) Replace(entityID string, list []Mark) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entityID] = Normalize(list, s.capacity)
}

// Insert puts a mark at the head of its entry's list, removing any
// prior mark with the same address and evicting the oldest when the
// list would exceed capacity. Pending marks are evicted like any other.
func (s *Store) Insert(entityID string, m Mark) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]Mark{m}, s.entries[entityID]...)
	s.entries[entityID] = Normalize(list, s.capacity)
}

// Confirm swaps the provisional mark identified by tempID for its
// server-acknowledged counterpart. Replaying the same confirmation is
// a no-op: once no provisional mark carries tempID and a mark with the
// confirmed id is already present, the list is left untouched. A
// confirmation for a mark that was evicted in the meantime does not
// resurrect it.
func (s *Store) Confirm(entityID, tempID string, confirmed Mark) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[entityID]
	for i, m := range list {
		if m.ID.Provisional() && m.ID.String() == tempID {
			list[i] = confirmed
			s.entries[entityID] = Normalize(list, s.capacity)
			return true
		}
	}
	return false
}

// Entities lists the entry ids with at least one cached mark
func (s *Store) Entities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id, list := range s.entries {
		if len(list) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Remove drops an entry's collection entirely
func (s *Store) Remove(entityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, entityID)
}

// Clear empties the store, e.g. on logout
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string][]Mark)
}
