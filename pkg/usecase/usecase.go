package usecase

import (
	"time"

	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/utils/busy"
)

// UseCases wires one use case per view onto a shared backend.
type UseCases struct {
	backend  interfaces.Backend
	settings interfaces.SettingsRepository
	notifier interfaces.Notifier
	siteID   string
	now      func() time.Time
	inflight *busy.Set

	LogList   *LogListUseCase
	LogDetail *LogDetailUseCase
	LogForm   *LogFormUseCase
	Upload    *UploadUseCase
	Reports   *ReportsUseCase
	Settings  *SettingsUseCase
}

type Option func(*UseCases)

// WithSettingsRepository persists settings. Without it settings are read only defaults.
func WithSettingsRepository(repo interfaces.SettingsRepository) Option {
	return func(uc *UseCases) {
		uc.settings = repo
	}
}

// WithNotifier enables safety alerts for newly created logs.
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithSiteID(id string) Option {
	return func(uc *UseCases) {
		uc.siteID = id
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(backend interfaces.Backend, opts ...Option) *UseCases {
	uc := &UseCases{
		backend:  backend,
		now:      time.Now,
		inflight: busy.New(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Settings = NewSettingsUseCase(uc.settings, uc.siteID, uc.now)
	uc.LogList = NewLogListUseCase(backend, uc.inflight)
	uc.LogDetail = NewLogDetailUseCase(backend, backend, uc.inflight)
	uc.LogForm = NewLogFormUseCase(backend, backend, uc.inflight, uc.Settings, uc.notifier, uc.now)
	uc.Upload = NewUploadUseCase(backend, uc.inflight)
	uc.Reports = NewReportsUseCase(backend)

	return uc
}

// Now returns the use cases' clock reading.
func (uc *UseCases) Now() time.Time {
	return uc.now()
}

// InFlight lists the keys of actions that have not finished yet.
func (uc *UseCases) InFlight() []string {
	return uc.inflight.Keys()
}
