package store_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/forum-notifier/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{
		store.ErrNotFound,
		store.ErrUserNotFound,
		store.ErrSiteNotFound,
		store.ErrCourseNotFound,
		fmt.Errorf("lookup: %w", store.ErrSiteNotFound),
	} {
		assert.True(t, store.IsNotFoundError(err), "%v should be a not found error", err)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	}

	assert.False(t, store.IsNotFoundError(store.ErrInvalidEntity))
	assert.False(t, store.IsNotFoundError(nil))
	assert.False(t, errors.Is(store.ErrUserNotFound, store.ErrSiteNotFound))
	assert.Equal(t, "entity not found: site", store.ErrSiteNotFound.Error())
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("with wrapped error", func(t *testing.T) {
		t.Parallel()

		err := store.NewStoreError("site", "get", "query failed", sql.ErrConnDone)
		assert.Equal(t, "get operation on site failed: query failed: "+sql.ErrConnDone.Error(), err.Error())
		assert.True(t, errors.Is(err, sql.ErrConnDone))

		var storeErr *store.StoreError
		assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &storeErr))
		assert.Equal(t, "site", storeErr.Entity)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		t.Parallel()

		err := store.NewStoreError("user", "get", "bad row", nil)
		assert.Equal(t, "get operation on user failed: bad row", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
