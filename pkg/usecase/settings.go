package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
	"github.com/sitelog/sitelog/pkg/utils/logging"
)

// DefaultSiteID keys the settings document when no site is configured.
const DefaultSiteID = "default"

// SettingsUseCase loads and stores site settings. Values that were never saved
// come from the defaults, which the site config watcher may replace at runtime.
type SettingsUseCase struct {
	repo     interfaces.SettingsRepository
	siteID   string
	defaults atomic.Pointer[model.SiteSettings]
	now      func() time.Time
}

func NewSettingsUseCase(repo interfaces.SettingsRepository, siteID string, now func() time.Time) *SettingsUseCase {
	if siteID == "" {
		siteID = DefaultSiteID
	}
	uc := &SettingsUseCase{repo: repo, siteID: siteID, now: now}
	uc.defaults.Store(model.DefaultSiteSettings())
	return uc
}

func (uc *SettingsUseCase) SiteID() string {
	return uc.siteID
}

// SetDefaults replaces the fallback settings. nil restores the built-in defaults.
func (uc *SettingsUseCase) SetDefaults(defaults *model.SiteSettings) {
	if defaults == nil {
		defaults = model.DefaultSiteSettings()
	}
	uc.defaults.Store(defaults.Copy())
	logging.Default().Info("site defaults updated", "site_name", defaults.General.SiteName)
}

// Defaults returns a copy of the current fallback settings.
func (uc *SettingsUseCase) Defaults() *model.SiteSettings {
	d := uc.defaults.Load().Copy()
	d.SiteID = uc.siteID
	return d
}

// Get returns the saved settings, or the defaults when nothing is saved.
func (uc *SettingsUseCase) Get(ctx context.Context) (*model.SiteSettings, error) {
	if uc.repo == nil {
		return uc.Defaults(), nil
	}
	s, err := uc.repo.Get(ctx, uc.siteID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get settings", goerr.V("site_id", uc.siteID))
	}
	if s == nil {
		return uc.Defaults(), nil
	}
	return s, nil
}

// Current is Get that falls back to defaults on error, for callers that cannot fail.
func (uc *SettingsUseCase) Current(ctx context.Context) *model.SiteSettings {
	s, err := uc.Get(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to load settings, using defaults")
		return uc.Defaults()
	}
	return s
}

// Save stores s for the configured site.
func (uc *SettingsUseCase) Save(ctx context.Context, s *model.SiteSettings) error {
	if uc.repo == nil {
		return newAlert(MsgSaveSettingsFailed, goerr.New("no settings repository configured"))
	}
	s = s.Copy()
	s.SiteID = uc.siteID
	s.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Put(ctx, s); err != nil {
		return newAlert(MsgSaveSettingsFailed, errutil.Handle(ctx, err, "failed to save settings"))
	}
	return nil
}

// Reset deletes the saved settings so the defaults apply again.
func (uc *SettingsUseCase) Reset(ctx context.Context) error {
	if uc.repo == nil {
		return nil
	}
	if err := uc.repo.Delete(ctx, uc.siteID); err != nil {
		return newAlert(MsgSaveSettingsFailed, errutil.Handle(ctx, err, "failed to reset settings"))
	}
	return nil
}

// History returns up to limit previously saved versions, newest first.
func (uc *SettingsUseCase) History(ctx context.Context, limit int) ([]*model.SiteSettings, error) {
	if uc.repo == nil {
		return []*model.SiteSettings{}, nil
	}
	h, err := uc.repo.History(ctx, uc.siteID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get settings history", goerr.V("site_id", uc.siteID))
	}
	return h, nil
}
