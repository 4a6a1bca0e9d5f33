package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/phrazzld/forum-notifier/internal/store"
)

// PostgresSiteStore implements store.SiteStore. Site configuration overrides
// live in a JSONB column next to the site row.
type PostgresSiteStore struct {
	db store.DBTX
}

// NewPostgresSiteStore creates a new PostgresSiteStore.
func NewPostgresSiteStore(db store.DBTX) *PostgresSiteStore {
	return &PostgresSiteStore{db: db}
}

var _ store.SiteStore = (*PostgresSiteStore)(nil)

// GetByID implements store.SiteStore.GetByID.
func (s *PostgresSiteStore) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, domain, name, configuration
		FROM sites
		WHERE id = $1
	`

	var site domain.Site
	var configuration []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&site.ID,
		&site.Domain,
		&site.Name,
		&configuration,
	)
	if err != nil {
		mapped := mapNotFound(err, store.ErrSiteNotFound)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to get site", "site_id", id, "error", err)
		}
		return nil, fmt.Errorf("get site %d: %w", id, mapped)
	}

	if len(configuration) > 0 {
		if err := json.Unmarshal(configuration, &site.Configuration); err != nil {
			log.Error("site configuration is not a JSON object", "site_id", id, "error", err)
			return nil, store.NewStoreError("site", "get", "invalid configuration",
				fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
		}
	}

	return &site, nil
}
