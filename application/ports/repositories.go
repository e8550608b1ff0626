package ports

import (
	"context"
	"time"
)

// MarkRecord is the durable counterpart of a mark, keyed uniquely by
// (user, entry, address) in every backing store.
type MarkRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	EntryID    string    `json:"entry_id"`
	Address    string    `json:"address"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// MarkRepository is the server-side persistence port for marks
type MarkRepository interface {
	// List returns the user's marks newest first, optionally scoped to
	// one entry (entryID == "" means all).
	List(ctx context.Context, userID, entryID string) ([]MarkRecord, error)

	// Upsert inserts the record or, when (user, entry, address) already
	// exists, returns the existing record unchanged.
	Upsert(ctx context.Context, rec MarkRecord) (MarkRecord, error)

	// BatchUpsert applies Upsert semantics per item in one call.
	BatchUpsert(ctx context.Context, recs []MarkRecord) ([]MarkRecord, error)

	// Delete removes the user's mark by id; not-found is a typed error.
	Delete(ctx context.Context, userID, markID string) error
}

// ProgressRepository persists the collected entry ids per user
type ProgressRepository interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Save(ctx context.Context, userID string, entryIDs []string) error
}

// Profile is a credential record binding a phone number to a catalog identity
type Profile struct {
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileRepository persists account bindings
type ProfileRepository interface {
	// GetByPhone returns the profile or a typed not-found error.
	GetByPhone(ctx context.Context, phone string) (Profile, error)

	// Create stores a new binding; an existing phone is a typed
	// conflict error.
	Create(ctx context.Context, profile Profile) error
}

// FeedbackRecord is a user feedback item with an optional admin reply
type FeedbackRecord struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Content      string     `json:"content"`
	ReplyContent string     `json:"reply_content,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	RepliedAt    *time.Time `json:"replied_at,omitempty"`
}

// FeedbackRepository persists user feedback
type FeedbackRepository interface {
	Create(ctx context.Context, rec FeedbackRecord) error
	ListByUser(ctx context.Context, userID string) ([]FeedbackRecord, error)
}

// ActivityEvent is a best-effort domain activity notification
type ActivityEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	EntryID    string    `json:"entry_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Activity event types
const (
	EventMarkRecorded  = "fishdex.mark.recorded"
	EventEntryUnlocked = "fishdex.entry.unlocked"
)

// EventPublisher publishes activity events. Implementations must never
// block or fail the request path; errors are logged and swallowed by
// callers.
type EventPublisher interface {
	Publish(ctx context.Context, event ActivityEvent) error
}
