package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/cli/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadSiteDefaults(t *testing.T) {
	t.Run("toml overrides only given keys", func(t *testing.T) {
		path := writeFile(t, "site.toml", `
[general]
site_name = "Harbor Bridge Retrofit"
project_type = "Infrastructure"

[notifications]
weather_alerts = false
`)
		s, err := config.LoadSiteDefaults(path)
		gt.NoError(t, err).Required()
		gt.Value(t, s.General.SiteName).Equal("Harbor Bridge Retrofit")
		gt.Value(t, s.General.ProjectType).Equal("Infrastructure")
		gt.Value(t, s.General.ProjectManager).Equal("John Smith")
		gt.Bool(t, s.Notifications.WeatherAlerts).False()
		gt.Bool(t, s.Notifications.SafetyAlerts).True()
		gt.Value(t, s.Safety.EmergencyContact).Equal("911")
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "site.yml", `
general:
  site_name: Riverside Lofts
safety:
  safety_officer: Dana Cole
data:
  auto_backup: false
`)
		s, err := config.LoadSiteDefaults(path)
		gt.NoError(t, err).Required()
		gt.Value(t, s.General.SiteName).Equal("Riverside Lofts")
		gt.Value(t, s.Safety.SafetyOfficer).Equal("Dana Cole")
		gt.Bool(t, s.Data.AutoBackup).False()
		gt.Bool(t, s.Data.DataRetention).True()
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "site.json", `{}`)
		_, err := config.LoadSiteDefaults(path)
		gt.Error(t, err).Is(config.ErrUnsupportedFormat)
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := writeFile(t, "site.toml", `[general`)
		_, err := config.LoadSiteDefaults(path)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("empty site name is rejected", func(t *testing.T) {
		path := writeFile(t, "site.yaml", "general:\n  site_name: \"\"\n")
		_, err := config.LoadSiteDefaults(path)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadSiteDefaults(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err)
	})
}

func TestSiteLoadDefaultsWithoutFile(t *testing.T) {
	s, err := config.NewSiteForTest("default", "").LoadDefaults()
	gt.NoError(t, err)
	gt.Value(t, s).Nil()
}
