package entity

import (
	"context"
	"time"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: Sale, Quote.
type Document struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// CreatedAt is the business timestamp of the document
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewDocument creates a new Document with generated ID and timestamp.
func NewDocument() Document {
	return Document{
		ID:        id.New(),
		CreatedAt: time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.CreatedAt.IsZero() {
		return apperror.NewValidation("created_at is required").
			WithDetail("field", "createdAt")
	}

	return nil
}
