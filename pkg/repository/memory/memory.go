package memory

import (
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
)

// Memory keeps settings in process memory. Used by tests and the "memory" backend.
type Memory struct {
	settings *settingsRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		settings: newSettingsRepository(),
	}
}

func (m *Memory) Settings() interfaces.SettingsRepository {
	return m.settings
}

// Close is a no-op for in-memory storage
func (m *Memory) Close() error {
	return nil
}
