package domain

import "errors"

var (
	// ErrNotFound indicates that no contact matched the given name.
	ErrNotFound = errors.New("contact not found")
	// ErrDuplicateEntry indicates a contact with the same normalized name
	// already exists.
	ErrDuplicateEntry = errors.New("contact already exists")
	// ErrValidation is the sentinel wrapped by all input validation
	// failures; the wrapping message is safe to show to the user.
	ErrValidation = errors.New("invalid input")
)
