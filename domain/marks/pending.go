package marks

import "sync"

// PendingMark is a locally created mark awaiting remote
// acknowledgment, tagged with its owning identity.
type PendingMark struct {
	Mark
	Identity string
}

// PendingBuffer holds marks created locally but not yet confirmed by
// the remote store. A mark leaves the buffer only after a successful
// acknowledgment or a Drain; the buffer never retries on its own, and
// a failed flush is not re-enqueued automatically.
type PendingBuffer struct {
	mu    sync.Mutex
	items []PendingMark
}

// NewPendingBuffer creates an empty buffer
func NewPendingBuffer() *PendingBuffer {
	return &PendingBuffer{}
}

// Enqueue appends a pending mark
func (b *PendingBuffer) Enqueue(identity string, m Mark) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, PendingMark{Mark: m, Identity: identity})
}

// Drain atomically empties the buffer and returns its contents. The
// caller owns re-enqueueing if the flush fails.
func (b *PendingBuffer) Drain() []PendingMark {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.items
	b.items = nil
	return drained
}

// Ack removes the pending mark with the given provisional id after a
// successful single-create acknowledgment.
func (b *PendingBuffer) Ack(tempID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, item := range b.items {
		if item.ID.Provisional() && item.ID.String() == tempID {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// Len returns the number of buffered marks
func (b *PendingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.items)
}
