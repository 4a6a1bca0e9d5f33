package postgres

import (
	"context"
	"fmt"

	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/phrazzld/forum-notifier/internal/store"
)

// PostgresUserStore implements store.UserStore against the users table.
type PostgresUserStore struct {
	db store.DBTX
}

// NewPostgresUserStore creates a new PostgresUserStore.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, username, email, is_active
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.IsActive,
	)
	if err != nil {
		mapped := mapNotFound(err, store.ErrUserNotFound)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to get user", "user_id", id, "error", err)
		}
		return nil, fmt.Errorf("get user %d: %w", id, mapped)
	}

	return &user, nil
}
