// Package id provides UUIDv7 identifiers for catalogs, documents, and
// register rows. Time-ordered IDs keep sale and movement listings in
// creation order without extra indexes.
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7. The first 48 bits carry a Unix timestamp,
// which gives documents natural chronological ordering and good B-tree
// locality in Postgres. Falls back to V4 if the entropy source fails.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v7
}

// Parse converts a string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts a string to ID, panics on error. Tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero-value UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks whether the ID is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
