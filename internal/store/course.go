package store

import (
	"context"

	"github.com/phrazzld/forum-notifier/internal/domain"
)

// CourseOverviewStore provides read access to course overviews.
type CourseOverviewStore interface {
	// GetByCourseKey retrieves the overview for a course run.
	// Returns ErrCourseNotFound if no overview exists.
	GetByCourseKey(ctx context.Context, key domain.CourseKey) (*domain.CourseOverview, error)
}
