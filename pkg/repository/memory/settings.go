package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
)

type settingsRepository struct {
	mu      sync.RWMutex
	sites   map[string]*model.SiteSettings
	history map[string][]*model.SiteSettings
}

var _ interfaces.SettingsRepository = &settingsRepository{}

func newSettingsRepository() *settingsRepository {
	return &settingsRepository{
		sites:   make(map[string]*model.SiteSettings),
		history: make(map[string][]*model.SiteSettings),
	}
}

func (r *settingsRepository) Get(ctx context.Context, siteID string) (*model.SiteSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sites[siteID]
	if !ok {
		return nil, nil
	}
	return s.Copy(), nil
}

func (r *settingsRepository) Put(ctx context.Context, settings *model.SiteSettings) error {
	if settings == nil || settings.SiteID == "" {
		return goerr.New("settings must have a site ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sites[settings.SiteID] = settings.Copy()
	r.history[settings.SiteID] = append(r.history[settings.SiteID], settings.Copy())
	return nil
}

func (r *settingsRepository) Delete(ctx context.Context, siteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sites, siteID)
	return nil
}

func (r *settingsRepository) History(ctx context.Context, siteID string, limit int) ([]*model.SiteSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.history[siteID]
	result := make([]*model.SiteSettings, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, versions[i].Copy())
	}
	return result, nil
}
