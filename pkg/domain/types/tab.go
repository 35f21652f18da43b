package types

// SettingsTab identifies a panel of the settings view.
type SettingsTab string

const (
	SettingsTabGeneral       SettingsTab = "general"
	SettingsTabSafety        SettingsTab = "safety"
	SettingsTabNotifications SettingsTab = "notifications"
	SettingsTabTeam          SettingsTab = "team"
	SettingsTabEquipment     SettingsTab = "equipment"
	SettingsTabData          SettingsTab = "data"
)

func AllSettingsTabs() []SettingsTab {
	return []SettingsTab{
		SettingsTabGeneral,
		SettingsTabSafety,
		SettingsTabNotifications,
		SettingsTabTeam,
		SettingsTabEquipment,
		SettingsTabData,
	}
}

func (t SettingsTab) Label() string {
	switch t {
	case SettingsTabGeneral:
		return "General"
	case SettingsTabSafety:
		return "Safety"
	case SettingsTabNotifications:
		return "Notifications"
	case SettingsTabTeam:
		return "Team Management"
	case SettingsTabEquipment:
		return "Equipment"
	case SettingsTabData:
		return "Data & Backup"
	default:
		return string(t)
	}
}

// ParseSettingsTab returns the tab named s, or the general tab when s is unknown.
func ParseSettingsTab(s string) SettingsTab {
	for _, t := range AllSettingsTabs() {
		if string(t) == s {
			return t
		}
	}
	return SettingsTabGeneral
}

// ReportsTab identifies a panel of the reports view.
type ReportsTab string

const (
	ReportsTabGenerate ReportsTab = "generate"
	ReportsTabSaved    ReportsTab = "saved"
)

// ParseReportsTab returns the tab named s, or the generate tab when s is unknown.
func ParseReportsTab(s string) ReportsTab {
	if ReportsTab(s) == ReportsTabSaved {
		return ReportsTabSaved
	}
	return ReportsTabGenerate
}
