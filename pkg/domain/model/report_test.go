package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
)

func TestSavedReportSummaryPreview(t *testing.T) {
	short := &model.SavedReport{Summary: "All clear"}
	gt.String(t, short.SummaryPreview()).Equal("All clear...")

	long := &model.SavedReport{Summary: strings.Repeat("a", 150)}
	gt.String(t, long.SummaryPreview()).Equal(strings.Repeat("a", 100) + "...")

	gt.String(t, (&model.SavedReport{}).SummaryPreview()).Equal("")
}

func TestSavedReportToGenerated(t *testing.T) {
	saved := &model.SavedReport{
		ID:         "r1",
		Name:       "Weekly",
		ReportType: "weekly",
		Duration:   types.DurationWeek,
		LogCount:   2,
		Summary:    "two logs",
	}

	generated := saved.ToGenerated()
	gt.String(t, generated.ReportType).Equal("weekly")
	gt.Number(t, generated.LogCount).Equal(2)
	gt.Value(t, generated.Logs).NotNil()
	gt.Array(t, generated.Logs).Length(0)
	gt.Bool(t, generated.HasDateRange()).False()

	saved.LogsData = []model.ReportLog{{ID: "1", Title: "A"}}
	gt.Array(t, saved.ToGenerated().Logs).Length(1)
}

func TestSaveReportRequestFlattens(t *testing.T) {
	req := model.SaveReportRequest{
		GeneratedReport: model.GeneratedReport{ReportType: "daily", Duration: types.DurationDay, Logs: []model.ReportLog{}},
		Name:            "Monday",
	}
	data, err := json.Marshal(req)
	gt.NoError(t, err).Required()

	var decoded map[string]any
	gt.NoError(t, json.Unmarshal(data, &decoded)).Required()
	gt.Map(t, decoded).HasKey("name")
	gt.Map(t, decoded).HasKey("reportType")
	gt.Map(t, decoded).HasKey("logs")
}

func TestGenerateReportRequestOmitsDates(t *testing.T) {
	data, err := json.Marshal(model.GenerateReportRequest{Duration: types.DurationWeek, ReportType: "weekly"})
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Equal(`{"duration":"week","reportType":"weekly"}`)
}

func TestDefaultSiteSettings(t *testing.T) {
	s := model.DefaultSiteSettings()
	gt.String(t, s.General.SiteName).Equal("Downtown Office Complex")
	gt.Bool(t, s.Notifications.SafetyAlerts).True()

	c := s.Copy()
	c.General.SiteName = "Changed"
	gt.String(t, s.General.SiteName).Equal("Downtown Office Complex")
}
