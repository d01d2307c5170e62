package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is a single phonebook entry. Name is stored in normalized form
// (trimmed, lowercased); Number is stored exactly as submitted.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContact creates a Contact with a fresh ID and normalized name.
func NewContact(name, number string) *Contact {
	now := time.Now().UTC()
	return &Contact{
		ID:        uuid.New(),
		Name:      NormalizeName(name),
		Number:    number,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeName trims surrounding whitespace and lowercases a name.
// Every comparison against the stored name column uses this form.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
