package store

import (
	"context"

	"github.com/phrazzld/forum-notifier/internal/domain"
)

// SiteStore provides read access to sites and their configuration.
type SiteStore interface {
	// GetByID retrieves a site by id, including its configuration overrides.
	// Returns ErrSiteNotFound if the site does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Site, error)
}
