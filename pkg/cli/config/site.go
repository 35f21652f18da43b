package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Site identifies the site whose settings are served and an optional file of
// default settings for it.
type Site struct {
	id         string
	configPath string
}

func (x *Site) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "site-id",
			Usage:       "Identifier of the site whose settings are stored",
			Category:    "Site",
			Value:       "default",
			Destination: &x.id,
			Sources:     cli.EnvVars("SITELOG_SITE_ID"),
		},
		&cli.StringFlag{
			Name:        "site-config",
			Usage:       "TOML or YAML file with default site settings; reloaded when it changes",
			Category:    "Site",
			Destination: &x.configPath,
			Sources:     cli.EnvVars("SITELOG_SITE_CONFIG"),
		},
	}
}

func (x Site) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", x.id),
		slog.String("config", x.configPath),
	)
}

func (x *Site) ID() string {
	return x.id
}

func (x *Site) ConfigPath() string {
	return x.configPath
}

// siteFile mirrors model.SiteSettings with file format tags. Keys missing from
// the file keep the built-in default.
type siteFile struct {
	General struct {
		SiteName       string `toml:"site_name" yaml:"site_name"`
		Address        string `toml:"address" yaml:"address"`
		ProjectManager string `toml:"project_manager" yaml:"project_manager"`
		ProjectType    string `toml:"project_type" yaml:"project_type"`
		CompletionDate string `toml:"completion_date" yaml:"completion_date"`
	} `toml:"general" yaml:"general"`
	Safety struct {
		DailyBriefings    bool   `toml:"daily_briefings" yaml:"daily_briefings"`
		EquipmentChecks   bool   `toml:"equipment_checks" yaml:"equipment_checks"`
		EmergencyResponse bool   `toml:"emergency_response" yaml:"emergency_response"`
		SafetyOfficer     string `toml:"safety_officer" yaml:"safety_officer"`
		EmergencyContact  string `toml:"emergency_contact" yaml:"emergency_contact"`
	} `toml:"safety" yaml:"safety"`
	Notifications struct {
		SafetyAlerts         bool `toml:"safety_alerts" yaml:"safety_alerts"`
		InspectionReminders  bool `toml:"inspection_reminders" yaml:"inspection_reminders"`
		EquipmentMaintenance bool `toml:"equipment_maintenance" yaml:"equipment_maintenance"`
		WeatherAlerts        bool `toml:"weather_alerts" yaml:"weather_alerts"`
	} `toml:"notifications" yaml:"notifications"`
	Data struct {
		AutoBackup    bool `toml:"auto_backup" yaml:"auto_backup"`
		DataRetention bool `toml:"data_retention" yaml:"data_retention"`
	} `toml:"data" yaml:"data"`
}

func newSiteFile(s *model.SiteSettings) *siteFile {
	var f siteFile
	f.General.SiteName = s.General.SiteName
	f.General.Address = s.General.Address
	f.General.ProjectManager = s.General.ProjectManager
	f.General.ProjectType = s.General.ProjectType
	f.General.CompletionDate = s.General.CompletionDate
	f.Safety.DailyBriefings = s.Safety.DailyBriefings
	f.Safety.EquipmentChecks = s.Safety.EquipmentChecks
	f.Safety.EmergencyResponse = s.Safety.EmergencyResponse
	f.Safety.SafetyOfficer = s.Safety.SafetyOfficer
	f.Safety.EmergencyContact = s.Safety.EmergencyContact
	f.Notifications.SafetyAlerts = s.Notifications.SafetyAlerts
	f.Notifications.InspectionReminders = s.Notifications.InspectionReminders
	f.Notifications.EquipmentMaintenance = s.Notifications.EquipmentMaintenance
	f.Notifications.WeatherAlerts = s.Notifications.WeatherAlerts
	f.Data.AutoBackup = s.Data.AutoBackup
	f.Data.DataRetention = s.Data.DataRetention
	return &f
}

func (f *siteFile) toModel() *model.SiteSettings {
	return &model.SiteSettings{
		General: model.GeneralSettings{
			SiteName:       f.General.SiteName,
			Address:        f.General.Address,
			ProjectManager: f.General.ProjectManager,
			ProjectType:    f.General.ProjectType,
			CompletionDate: f.General.CompletionDate,
		},
		Safety: model.SafetySettings{
			DailyBriefings:    f.Safety.DailyBriefings,
			EquipmentChecks:   f.Safety.EquipmentChecks,
			EmergencyResponse: f.Safety.EmergencyResponse,
			SafetyOfficer:     f.Safety.SafetyOfficer,
			EmergencyContact:  f.Safety.EmergencyContact,
		},
		Notifications: model.NotificationSettings{
			SafetyAlerts:         f.Notifications.SafetyAlerts,
			InspectionReminders:  f.Notifications.InspectionReminders,
			EquipmentMaintenance: f.Notifications.EquipmentMaintenance,
			WeatherAlerts:        f.Notifications.WeatherAlerts,
		},
		Data: model.DataSettings{
			AutoBackup:    f.Data.AutoBackup,
			DataRetention: f.Data.DataRetention,
		},
	}
}

// LoadDefaults reads the site config file. It returns nil, nil when no file is configured.
func (x *Site) LoadDefaults() (*model.SiteSettings, error) {
	if x.configPath == "" {
		return nil, nil
	}
	return LoadSiteDefaults(x.configPath)
}

// LoadSiteDefaults parses a site settings file, chosen by extension: .toml,
// .yaml or .yml. Keys absent from the file keep their built-in default values.
func LoadSiteDefaults(path string) (*model.SiteSettings, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read site config", goerr.V(ConfigPathKey, path))
	}

	f := newSiteFile(model.DefaultSiteSettings())
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, f); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML site config", goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse YAML site config", goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
		}
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "site config must be .toml, .yaml or .yml", goerr.V(ConfigPathKey, path), goerr.V("ext", ext))
	}

	s := f.toModel()
	if strings.TrimSpace(s.General.SiteName) == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "site_name must not be empty", goerr.V(ConfigPathKey, path))
	}
	return s, nil
}
