package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/forum-notifier/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "no rows",
			err:      sql.ErrNoRows,
			expected: store.ErrNotFound,
		},
		{
			name:     "wrapped no rows",
			err:      fmt.Errorf("query: %w", sql.ErrNoRows),
			expected: store.ErrNotFound,
		},
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "sites_domain_key"},
			expected: store.ErrDuplicate,
		},
		{
			name:     "foreign key violation",
			err:      &pgconn.PgError{Code: foreignKeyViolationCode},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "check violation",
			err:      &pgconn.PgError{Code: checkViolationCode, ConstraintName: "sites_configuration_is_object"},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "not null violation",
			err:      &pgconn.PgError{Code: notNullViolationCode, ColumnName: "email"},
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapError(tc.err), tc.expected)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("unrecognized errors pass through", func(t *testing.T) {
		original := errors.New("connection reset")
		assert.Equal(t, original, MapError(original))

		pgErr := &pgconn.PgError{Code: "40001"}
		assert.Equal(t, error(pgErr), MapError(pgErr))
	})
}

func TestMapNotFound(t *testing.T) {
	err := mapNotFound(sql.ErrNoRows, store.ErrSiteNotFound)

	assert.ErrorIs(t, err, store.ErrSiteNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, store.IsNotFoundError(err))

	dup := mapNotFound(&pgconn.PgError{Code: uniqueViolationCode}, store.ErrSiteNotFound)
	assert.ErrorIs(t, dup, store.ErrDuplicate)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolationCode})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	require.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, "task"))

	err := CheckRowsAffected(fakeResult{rows: 0}, "task")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "task not found")

	assert.ErrorIs(t, CheckRowsAffected(fakeResult{rows: 0}, ""), store.ErrNotFound)
	assert.Error(t, CheckRowsAffected(fakeResult{err: errors.New("driver")}, "task"))
	assert.Error(t, CheckRowsAffected(nil, "task"))
}
