package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ismailco/phonebook/internal/phonebook/domain"
)

// Application implements the phonebook use cases: find, add, update, delete.
// Validation happens here, before any repository call; a request that fails
// validation never touches the store.
type Application struct {
	contacts domain.ContactRepository
	logger   *slog.Logger
}

func NewApplication(contacts domain.ContactRepository, logger *slog.Logger) *Application {
	return &Application{contacts: contacts, logger: logger}
}

// Find returns all contacts whose name contains the normalized keyword.
// An empty result is not an error.
func (a *Application) Find(ctx context.Context, keyword string) ([]*domain.Contact, error) {
	normalized := domain.NormalizeName(keyword)
	if normalized == "" {
		return nil, fmt.Errorf("%w: please enter a search term", domain.ErrValidation)
	}

	contacts, err := a.contacts.Search(ctx, normalized)
	if err != nil {
		a.logger.ErrorContext(ctx, "Search failed", "error", err)
		return nil, err
	}
	return contacts, nil
}

// Add validates the submitted name and number and inserts a new contact.
// Adding a name that already exists (case-insensitively) is rejected.
func (a *Application) Add(ctx context.Context, name, number string) (*domain.Contact, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePhone(number); err != nil {
		return nil, err
	}

	existing, err := a.contacts.FindByName(ctx, domain.NormalizeName(name))
	if err != nil {
		a.logger.ErrorContext(ctx, "Duplicate check failed", "error", err)
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEntry
	}

	ct := domain.NewContact(name, number)
	if err := a.contacts.Create(ctx, ct); err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "Contact added", "contact_id", ct.ID)
	return ct, nil
}

// Update replaces the number of an existing contact looked up by
// normalized name.
func (a *Application) Update(ctx context.Context, name, number string) (*domain.Contact, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePhone(number); err != nil {
		return nil, err
	}

	existing, err := a.contacts.FindByName(ctx, domain.NormalizeName(name))
	if err != nil {
		a.logger.ErrorContext(ctx, "Lookup for update failed", "error", err)
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	if err := a.contacts.UpdateNumber(ctx, existing.ID, number); err != nil {
		return nil, err
	}
	existing.Number = number
	existing.UpdatedAt = time.Now().UTC()
	a.logger.InfoContext(ctx, "Contact updated", "contact_id", existing.ID)
	return existing, nil
}

// Delete removes every contact matching the normalized name and reports how
// many rows were removed. Zero rows is domain.ErrNotFound.
func (a *Application) Delete(ctx context.Context, name string) (int64, error) {
	if err := domain.ValidateName(name); err != nil {
		return 0, err
	}

	affected, err := a.contacts.DeleteByName(ctx, domain.NormalizeName(name))
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, domain.ErrNotFound
	}
	a.logger.InfoContext(ctx, "Contacts deleted", "rows_affected", affected)
	return affected, nil
}
