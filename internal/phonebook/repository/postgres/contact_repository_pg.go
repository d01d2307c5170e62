package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ismailco/phonebook/internal/phonebook/domain"
)

// Querier is the subset of pgxpool.Pool the repository needs. Keeping it an
// interface lets tests substitute a pgxmock pool and assert on the exact
// query text and bound parameters.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgContactRepository is the PostgreSQL implementation of
// domain.ContactRepository. All query strings are package-level constants;
// user values only ever travel through the args of Exec/Query/QueryRow.
type PgContactRepository struct {
	db     Querier
	logger *slog.Logger
}

func NewPgContactRepository(db Querier, logger *slog.Logger) *PgContactRepository {
	return &PgContactRepository{db: db, logger: logger}
}

const (
	insertContactSQL = `INSERT INTO contacts (id, name, number, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	findByNameSQL = `SELECT id, name, number, created_at, updated_at FROM contacts WHERE name = $1 LIMIT 1`

	searchByNameSQL = `SELECT id, name, number, created_at, updated_at FROM contacts WHERE name LIKE $1 ORDER BY name ASC`

	updateNumberSQL = `UPDATE contacts SET number = $1, updated_at = $2 WHERE id = $3`

	deleteByNameSQL = `DELETE FROM contacts WHERE name = $1`
)

func (r *PgContactRepository) Create(ctx context.Context, ct *domain.Contact) error {
	_, err := r.db.Exec(ctx, insertContactSQL, ct.ID, ct.Name, ct.Number, ct.CreatedAt, ct.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating contact", "error", err, "contact_id", ct.ID)
		return err
	}
	r.logger.InfoContext(ctx, "Contact created", "contact_id", ct.ID)
	return nil
}

func (r *PgContactRepository) FindByName(ctx context.Context, name string) (*domain.Contact, error) {
	ct := &domain.Contact{}
	err := r.db.QueryRow(ctx, findByNameSQL, name).Scan(
		&ct.ID, &ct.Name, &ct.Number, &ct.CreatedAt, &ct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error finding contact by name", "error", err)
		return nil, err
	}
	return ct, nil
}

func (r *PgContactRepository) Search(ctx context.Context, keyword string) ([]*domain.Contact, error) {
	// The LIKE pattern is assembled here and bound as a single parameter;
	// the keyword never becomes part of the query text.
	pattern := "%" + keyword + "%"
	rows, err := r.db.Query(ctx, searchByNameSQL, pattern)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error searching contacts", "error", err)
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		ct := &domain.Contact{}
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.Number, &ct.CreatedAt, &ct.UpdatedAt); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning contact row", "error", err)
			return nil, err
		}
		contacts = append(contacts, ct)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating contact rows", "error", err)
		return nil, err
	}
	return contacts, nil
}

func (r *PgContactRepository) UpdateNumber(ctx context.Context, id uuid.UUID, number string) error {
	tag, err := r.db.Exec(ctx, updateNumberSQL, number, time.Now().UTC(), id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating contact number", "error", err, "contact_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Contact number updated", "contact_id", id)
	return nil
}

func (r *PgContactRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteByNameSQL, name)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting contacts by name", "error", err)
		return 0, err
	}
	affected := tag.RowsAffected()
	r.logger.InfoContext(ctx, "Contacts deleted", "rows_affected", affected)
	return affected, nil
}
