package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/phrazzld/forum-notifier/internal/store"
)

// PostgresCourseOverviewStore implements store.CourseOverviewStore. Course
// overviews are keyed by the canonical string form of the course key.
type PostgresCourseOverviewStore struct {
	db store.DBTX
}

// NewPostgresCourseOverviewStore creates a new PostgresCourseOverviewStore.
func NewPostgresCourseOverviewStore(db store.DBTX) *PostgresCourseOverviewStore {
	return &PostgresCourseOverviewStore{db: db}
}

var _ store.CourseOverviewStore = (*PostgresCourseOverviewStore)(nil)

// GetByCourseKey implements store.CourseOverviewStore.GetByCourseKey.
func (s *PostgresCourseOverviewStore) GetByCourseKey(
	ctx context.Context,
	key domain.CourseKey,
) (*domain.CourseOverview, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT display_name, language
		FROM course_overviews
		WHERE id = $1
	`

	var (
		displayName sql.NullString
		language    sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, key.String()).Scan(&displayName, &language)
	if err != nil {
		mapped := mapNotFound(err, store.ErrCourseNotFound)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to get course overview", "course_id", key.String(), "error", err)
		}
		return nil, fmt.Errorf("get course overview %s: %w", key, mapped)
	}

	return &domain.CourseOverview{
		ID:          key,
		DisplayName: displayName.String,
		Language:    language.String,
	}, nil
}
