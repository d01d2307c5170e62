package domain

import (
	"context"

	"github.com/google/uuid"
)

// ContactRepository defines the persistence operations for contacts.
// Implementations must bind every caller-supplied value as a query parameter;
// the query text itself is fixed.
type ContactRepository interface {
	Create(ctx context.Context, contact *Contact) error
	// FindByName returns the first contact whose stored name equals the
	// normalized name, or (nil, nil) when there is no match.
	FindByName(ctx context.Context, name string) (*Contact, error)
	// Search returns all contacts whose stored name contains the
	// normalized keyword as a substring.
	Search(ctx context.Context, keyword string) ([]*Contact, error)
	UpdateNumber(ctx context.Context, id uuid.UUID, number string) error
	// DeleteByName removes all contacts with the normalized name and
	// reports how many rows were removed.
	DeleteByName(ctx context.Context, name string) (int64, error)
}
