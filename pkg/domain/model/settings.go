package model

import "time"

// SiteSettings is the configuration shown in the settings view for one site.
type SiteSettings struct {
	SiteID        string               `json:"siteId"`
	General       GeneralSettings      `json:"general"`
	Safety        SafetySettings       `json:"safety"`
	Notifications NotificationSettings `json:"notifications"`
	Data          DataSettings         `json:"data"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type GeneralSettings struct {
	SiteName       string `json:"siteName"`
	Address        string `json:"address"`
	ProjectManager string `json:"projectManager"`
	ProjectType    string `json:"projectType"`
	CompletionDate string `json:"completionDate"`
}

type SafetySettings struct {
	DailyBriefings    bool   `json:"dailyBriefings"`
	EquipmentChecks   bool   `json:"equipmentChecks"`
	EmergencyResponse bool   `json:"emergencyResponse"`
	SafetyOfficer     string `json:"safetyOfficer"`
	EmergencyContact  string `json:"emergencyContact"`
}

type NotificationSettings struct {
	SafetyAlerts         bool `json:"safetyAlerts"`
	InspectionReminders  bool `json:"inspectionReminders"`
	EquipmentMaintenance bool `json:"equipmentMaintenance"`
	WeatherAlerts        bool `json:"weatherAlerts"`
}

type DataSettings struct {
	AutoBackup    bool `json:"autoBackup"`
	DataRetention bool `json:"dataRetention"`
}

// ProjectTypes lists the selectable project types.
func ProjectTypes() []string {
	return []string{
		"Commercial Building",
		"Residential Complex",
		"Infrastructure",
		"Renovation",
	}
}

// DefaultSiteSettings returns the settings used before anything is saved.
func DefaultSiteSettings() *SiteSettings {
	return &SiteSettings{
		General: GeneralSettings{
			SiteName:       "Downtown Office Complex",
			Address:        "123 Main Street, Downtown, CA 90210",
			ProjectManager: "John Smith",
			ProjectType:    "Commercial Building",
			CompletionDate: "2024-12-31",
		},
		Safety: SafetySettings{
			DailyBriefings:    true,
			EquipmentChecks:   true,
			EmergencyResponse: true,
			SafetyOfficer:     "Mike Johnson",
			EmergencyContact:  "911",
		},
		Notifications: NotificationSettings{
			SafetyAlerts:         true,
			InspectionReminders:  true,
			EquipmentMaintenance: true,
			WeatherAlerts:        true,
		},
		Data: DataSettings{
			AutoBackup:    true,
			DataRetention: true,
		},
	}
}

// Copy returns a detached copy. Settings hold no reference types, so a value copy suffices.
func (s *SiteSettings) Copy() *SiteSettings {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
