package identity

import (
	"errors"

	"github.com/google/uuid"
)

// Kind is the life-cycle state of an identity
type Kind string

const (
	// KindAnonymous is a locally generated visitor handle with no server record
	KindAnonymous Kind = "anonymous"
	// KindAuthenticated is an identity bound to a verified credential
	KindAuthenticated Kind = "authenticated"
)

// Identity is the opaque user handle active for a session
type Identity struct {
	id    string
	phone string
	kind  Kind
}

// NewAnonymous mints a fresh visitor identity
func NewAnonymous() Identity {
	return Identity{id: uuid.New().String(), kind: KindAnonymous}
}

// NewAuthenticated wraps a credential-backed identity
func NewAuthenticated(id, phone string) (Identity, error) {
	if id == "" {
		return Identity{}, errors.New("identity id cannot be empty")
	}
	return Identity{id: id, phone: phone, kind: KindAuthenticated}, nil
}

// ID returns the opaque handle value
func (i Identity) ID() string {
	return i.id
}

// Phone returns the bound phone number, empty for anonymous identities
func (i Identity) Phone() string {
	return i.phone
}

// Anonymous reports whether the identity is a local visitor handle
func (i Identity) Anonymous() bool {
	return i.kind == KindAnonymous
}

// Authenticated reports whether the identity is credential-backed
func (i Identity) Authenticated() bool {
	return i.kind == KindAuthenticated
}

// IsZero checks if the identity is the zero value
func (i Identity) IsZero() bool {
	return i.id == ""
}

// Equals checks if two identities refer to the same handle
func (i Identity) Equals(other Identity) bool {
	return i.id == other.id && i.kind == other.kind
}
