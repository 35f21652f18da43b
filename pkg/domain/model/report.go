package model

import (
	"unicode/utf8"

	"github.com/sitelog/sitelog/pkg/domain/types"
)

// ReportType is a report template offered by the backend.
type ReportType struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Duration    types.Duration `json:"duration"`
	Icon        string         `json:"icon,omitempty"`
}

// ReportLog is the subset of a log embedded in a generated report.
type ReportLog struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      types.Status   `json:"status"`
	Priority    types.Priority `json:"priority"`
	Date        string         `json:"date,omitempty"`
	Inspector   string         `json:"inspector,omitempty"`
	Location    string         `json:"location,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   Timestamp      `json:"createdAt"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

// GeneratedReport is a report produced by the backend and not necessarily saved.
type GeneratedReport struct {
	ID          string         `json:"id,omitempty"`
	ReportType  string         `json:"reportType"`
	Duration    types.Duration `json:"duration"`
	GeneratedAt Timestamp      `json:"generatedAt"`
	LogCount    int            `json:"logCount"`
	Summary     string         `json:"summary"`
	StartDate   string         `json:"startDate,omitempty"`
	EndDate     string         `json:"endDate,omitempty"`
	Logs        []ReportLog    `json:"logs"`
}

func (r *GeneratedReport) HasDateRange() bool {
	return r.StartDate != "" && r.EndDate != ""
}

// SavedReport is a generated report persisted by the backend under a name.
// The embedded logs travel as logsData.
type SavedReport struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReportType  string         `json:"reportType"`
	Duration    types.Duration `json:"duration"`
	GeneratedAt Timestamp      `json:"generatedAt"`
	LogCount    int            `json:"logCount"`
	Summary     string         `json:"summary,omitempty"`
	StartDate   string         `json:"startDate,omitempty"`
	EndDate     string         `json:"endDate,omitempty"`
	LogsData    []ReportLog    `json:"logsData,omitempty"`
}

const summaryPreviewLength = 100

// SummaryPreview returns the first 100 characters of the summary followed by "...".
func (s *SavedReport) SummaryPreview() string {
	if s.Summary == "" {
		return ""
	}
	if utf8.RuneCountInString(s.Summary) <= summaryPreviewLength {
		return s.Summary + "..."
	}
	return string([]rune(s.Summary)[:summaryPreviewLength]) + "..."
}

// ToGenerated opens the saved report for viewing. A missing log list becomes empty.
func (s *SavedReport) ToGenerated() *GeneratedReport {
	logs := s.LogsData
	if logs == nil {
		logs = []ReportLog{}
	}
	return &GeneratedReport{
		ID:          s.ID,
		ReportType:  s.ReportType,
		Duration:    s.Duration,
		GeneratedAt: s.GeneratedAt,
		LogCount:    s.LogCount,
		Summary:     s.Summary,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		Logs:        logs,
	}
}

// ReportsIndex is the backend response listing report types and saved reports.
type ReportsIndex struct {
	ReportTypes  []ReportType  `json:"reportTypes"`
	SavedReports []SavedReport `json:"savedReports"`
}

// GenerateReportRequest asks the backend to build a report. Dates are only sent for custom ranges.
type GenerateReportRequest struct {
	Duration   types.Duration `json:"duration"`
	ReportType string         `json:"reportType"`
	StartDate  string         `json:"startDate,omitempty"`
	EndDate    string         `json:"endDate,omitempty"`
}

// SaveReportRequest is a generated report plus the name it is saved under.
type SaveReportRequest struct {
	GeneratedReport
	Name string `json:"name"`
}
