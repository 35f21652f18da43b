package interfaces

import (
	"context"

	"github.com/sitelog/sitelog/pkg/domain/model"
)

// Repository defines the interface for data persistence owned by this service.
// Logs, attachments and reports live in the REST backend, not here.
type Repository interface {
	Settings() SettingsRepository
	Close() error
}

// SettingsRepository stores one SiteSettings document per site.
type SettingsRepository interface {
	// Get returns nil without error when nothing has been saved for siteID.
	Get(ctx context.Context, siteID string) (*model.SiteSettings, error)
	Put(ctx context.Context, settings *model.SiteSettings) error
	Delete(ctx context.Context, siteID string) error
	// History returns previously saved versions, newest first, at most limit entries.
	History(ctx context.Context, siteID string, limit int) ([]*model.SiteSettings, error)
}
