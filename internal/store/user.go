package store

import (
	"context"

	"github.com/phrazzld/forum-notifier/internal/domain"
)

// UserStore provides read access to learner accounts.
type UserStore interface {
	// GetByID retrieves a user by id.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
