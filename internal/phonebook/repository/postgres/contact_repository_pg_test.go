package postgres_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ismailco/phonebook/internal/phonebook/domain"
	"github.com/ismailco/phonebook/internal/phonebook/repository/postgres"
)

func newTestRepo(t *testing.T) (*postgres.PgContactRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return postgres.NewPgContactRepository(mockPool, logger), mockPool
}

func TestPgContactRepository_Create(t *testing.T) {
	t.Run("Should bind every contact field as a parameter", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		ct := domain.NewContact("Jane Doe", "1234567890")

		mockPool.ExpectExec(`INSERT INTO contacts \(id, name, number, created_at, updated_at\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
			WithArgs(ct.ID, ct.Name, ct.Number, ct.CreatedAt, ct.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(context.Background(), ct)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should treat SQL metacharacters in the name as plain data", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		// If this ever got spliced into the query text the expectation on
		// the fixed statement below would not match.
		ct := domain.NewContact("a'; DROP TABLE contacts; --", "1234567890")

		mockPool.ExpectExec(`INSERT INTO contacts \(id, name, number, created_at, updated_at\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
			WithArgs(ct.ID, "a'; drop table contacts; --", ct.Number, ct.CreatedAt, ct.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(context.Background(), ct)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgContactRepository_FindByName(t *testing.T) {
	columns := []string{"id", "name", "number", "created_at", "updated_at"}

	t.Run("Should return the matching contact", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		id := uuid.New()
		now := time.Now().UTC()

		rows := mockPool.NewRows(columns).AddRow(id, "jane doe", "1234567890", now, now)
		mockPool.ExpectQuery(`SELECT id, name, number, created_at, updated_at FROM contacts WHERE name = \$1 LIMIT 1`).
			WithArgs("jane doe").
			WillReturnRows(rows)

		ct, err := repo.FindByName(context.Background(), "jane doe")
		require.NoError(t, err)
		require.NotNil(t, ct)
		assert.Equal(t, id, ct.ID)
		assert.Equal(t, "1234567890", ct.Number)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should return nil, nil when no row matches", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		mockPool.ExpectQuery(`SELECT id, name, number, created_at, updated_at FROM contacts WHERE name = \$1 LIMIT 1`).
			WithArgs("nobody").
			WillReturnError(pgx.ErrNoRows)

		ct, err := repo.FindByName(context.Background(), "nobody")
		assert.NoError(t, err)
		assert.Nil(t, ct)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should surface unexpected query errors", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		mockPool.ExpectQuery(`SELECT id, name, number, created_at, updated_at FROM contacts WHERE name = \$1 LIMIT 1`).
			WithArgs("jane doe").
			WillReturnError(errors.New("connection refused"))

		ct, err := repo.FindByName(context.Background(), "jane doe")
		assert.Error(t, err)
		assert.Nil(t, ct)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgContactRepository_Search(t *testing.T) {
	columns := []string{"id", "name", "number", "created_at", "updated_at"}

	t.Run("Should bind the LIKE pattern as a parameter", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		now := time.Now().UTC()

		rows := mockPool.NewRows(columns).
			AddRow(uuid.New(), "jane doe", "1234567890", now, now).
			AddRow(uuid.New(), "janet smith", "0987654321", now, now)
		mockPool.ExpectQuery(`SELECT id, name, number, created_at, updated_at FROM contacts WHERE name LIKE \$1 ORDER BY name ASC`).
			WithArgs("%jane%").
			WillReturnRows(rows)

		contacts, err := repo.Search(context.Background(), "jane")
		require.NoError(t, err)
		assert.Len(t, contacts, 2)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should pass an injection payload through as the pattern value", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		payload := "' OR '1'='1"

		rows := mockPool.NewRows(columns)
		mockPool.ExpectQuery(`SELECT id, name, number, created_at, updated_at FROM contacts WHERE name LIKE \$1 ORDER BY name ASC`).
			WithArgs("%" + payload + "%").
			WillReturnRows(rows)

		contacts, err := repo.Search(context.Background(), payload)
		require.NoError(t, err)
		assert.Empty(t, contacts)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgContactRepository_UpdateNumber(t *testing.T) {
	t.Run("Should update by id with bound parameters", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		id := uuid.New()

		mockPool.ExpectExec(`UPDATE contacts SET number = \$1, updated_at = \$2 WHERE id = \$3`).
			WithArgs("0987654321", pgxmock.AnyArg(), id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateNumber(context.Background(), id, "0987654321")
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should return ErrNotFound when nothing was updated", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		id := uuid.New()

		mockPool.ExpectExec(`UPDATE contacts SET number = \$1, updated_at = \$2 WHERE id = \$3`).
			WithArgs("0987654321", pgxmock.AnyArg(), id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateNumber(context.Background(), id, "0987654321")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgContactRepository_DeleteByName(t *testing.T) {
	t.Run("Should report rows affected", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)

		mockPool.ExpectExec(`DELETE FROM contacts WHERE name = \$1`).
			WithArgs("jane doe").
			WillReturnResult(pgxmock.NewResult("DELETE", 2))

		affected, err := repo.DeleteByName(context.Background(), "jane doe")
		require.NoError(t, err)
		assert.Equal(t, int64(2), affected)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should pass metacharacters as data and affect zero rows", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		payload := "a'; drop table contacts; --"

		mockPool.ExpectExec(`DELETE FROM contacts WHERE name = \$1`).
			WithArgs(payload).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		affected, err := repo.DeleteByName(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
