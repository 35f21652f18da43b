package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/sitelog/sitelog/pkg/usecase"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
	"github.com/sitelog/sitelog/pkg/utils/safe"
)

// settingsHistoryLimit is how many saved versions the data panel lists.
const settingsHistoryLimit = 5

type settingsPage struct {
	Tab      types.SettingsTab
	Settings *model.SiteSettings
	History  []*model.SiteSettings
}

func (s *Server) settingsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	tab := types.ParseSettingsTab(r.URL.Query().Get("tab"))

	settings, err := s.uc.Settings.Get(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to load settings")
		sess.addFlash(flashAlert, usecase.MsgLoadSettingsFailed)
		settings = s.uc.Settings.Defaults()
	}

	data := settingsPage{Tab: tab, Settings: settings}
	if tab == types.SettingsTabData {
		history, err := s.uc.Settings.History(ctx, settingsHistoryLimit)
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to load settings history")
		}
		data.History = history
	}

	s.render.render(w, r, http.StatusOK, "settings.html", "Settings", data)
}

// saveSettingsHandler applies the fields of the posted panel on top of the
// current settings. Panels without stored fields are ignored.
func (s *Server) saveSettingsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse settings form"), http.StatusBadRequest)
		return
	}
	tab := types.ParseSettingsTab(r.PostFormValue("tab"))

	settings := s.uc.Settings.Current(ctx)
	applySettingsForm(settings, tab, r)

	if err := s.uc.Settings.Save(ctx, settings); err != nil {
		sess.addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgSaveSettingsFailed))
	} else {
		sess.addFlash(flashNotice, usecase.MsgSettingsSaved)
	}
	redirect(w, r, "/settings?tab="+url.QueryEscape(string(tab)))
}

func applySettingsForm(s *model.SiteSettings, tab types.SettingsTab, r *http.Request) {
	checked := func(name string) bool {
		return r.PostFormValue(name) == "on"
	}

	switch tab {
	case types.SettingsTabGeneral:
		s.General.SiteName = r.PostFormValue("siteName")
		s.General.Address = r.PostFormValue("address")
		s.General.ProjectManager = r.PostFormValue("projectManager")
		s.General.ProjectType = r.PostFormValue("projectType")
		s.General.CompletionDate = r.PostFormValue("completionDate")
	case types.SettingsTabSafety:
		s.Safety.DailyBriefings = checked("dailyBriefings")
		s.Safety.EquipmentChecks = checked("equipmentChecks")
		s.Safety.EmergencyResponse = checked("emergencyResponse")
		s.Safety.SafetyOfficer = r.PostFormValue("safetyOfficer")
		s.Safety.EmergencyContact = r.PostFormValue("emergencyContact")
	case types.SettingsTabNotifications:
		s.Notifications.SafetyAlerts = checked("safetyAlerts")
		s.Notifications.InspectionReminders = checked("inspectionReminders")
		s.Notifications.EquipmentMaintenance = checked("equipmentMaintenance")
		s.Notifications.WeatherAlerts = checked("weatherAlerts")
	case types.SettingsTabData:
		s.Data.AutoBackup = checked("autoBackup")
		s.Data.DataRetention = checked("dataRetention")
	}
}

func (s *Server) resetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	if err := s.uc.Settings.Reset(ctx); err != nil {
		sess.addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgSaveSettingsFailed))
	} else {
		sess.addFlash(flashNotice, usecase.MsgSettingsReset)
	}
	redirect(w, r, "/settings?tab="+url.QueryEscape(r.FormValue("tab")))
}

type dataExport struct {
	ExportedAt string              `json:"exportedAt"`
	Settings   *model.SiteSettings `json:"settings"`
	Logs       []*model.Log        `json:"logs"`
}

// exportDataHandler downloads every log plus the site settings as JSON.
func (s *Server) exportDataHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	logs, err := s.uc.LogList.Export(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to export data")
		sessionFrom(ctx).addFlash(flashAlert, usecase.MsgLoadLogsFailed)
		redirect(w, r, "/settings?tab="+string(types.SettingsTabData))
		return
	}

	now := s.uc.Now()
	data, err := json.MarshalIndent(dataExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Settings:   s.uc.Settings.Current(ctx),
		Logs:       logs,
	}, "", "  ")
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal export"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachmentDisposition("construction-logs-"+now.Format(time.DateOnly)+".json"))
	w.WriteHeader(http.StatusOK)
	safe.Write(ctx, w, data)
}
