// Package ports declares the interfaces the application layer depends
// on. The sync engine consumes the remote mark gateway and the external
// collaborators through these; the REST layer consumes the repositories.
package ports

import (
	"context"

	"fishdex/domain/marks"
)

// MarkGateway is the narrow surface the sync engine uses against the
// remote mark store. Create and BatchCreate are idempotent upserts
// keyed by (identity, entity, address); resubmission never duplicates
// a durable record, though callers must still dedup locally before
// counting toward capacity.
type MarkGateway interface {
	// List fetches the identity's marks, optionally scoped to one
	// entry. entityID == "" means all entries.
	List(ctx context.Context, identityID, entityID string) ([]marks.Mark, error)

	// Create upserts a single mark and returns the server record.
	Create(ctx context.Context, identityID string, mark marks.Mark) (marks.Mark, error)

	// BatchCreate upserts a batch in one call, returning the server
	// records in input order where the store reports them.
	BatchCreate(ctx context.Context, identityID string, items []marks.Mark) ([]marks.Mark, error)

	// Delete removes a mark by server id. A missing mark surfaces as a
	// not-found error.
	Delete(ctx context.Context, identityID, markID string) error
}

// ResolvedAddress is the reverse-geocoding result
type ResolvedAddress struct {
	// Address is the display name, a nearby point of interest when one
	// qualifies, otherwise the formatted administrative address.
	Address          string
	FormattedAddress string
}

// Geocoder turns coordinates into a human-readable address
type Geocoder interface {
	Resolve(ctx context.Context, lat, lng float64) (ResolvedAddress, error)
}

// Recognition is the species recognizer's verdict for one image
type Recognition struct {
	Status      string  `json:"status"`
	Name        string  `json:"name_cn,omitempty"`
	LatinName   string  `json:"name_lat,omitempty"`
	Family      string  `json:"family,omitempty"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// RecognitionStatusOK marks a confident identification
const RecognitionStatusOK = "ok"

// RecognitionStatusUnrecognized marks a failed identification with a reason
const RecognitionStatusUnrecognized = "unrecognized"

// Recognizer identifies a species from image bytes
type Recognizer interface {
	Recognize(ctx context.Context, imageBase64, mimeType string) (Recognition, error)
}
