package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/sitelog/sitelog/pkg/domain/model"
)

const notSpecified = "Not specified"

// FormatReportText renders a report as the plain text document offered for download.
func FormatReportText(r *model.GeneratedReport) string {
	var b strings.Builder

	b.WriteString("\nCONSTRUCTION SITE REPORT\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	b.WriteString("Report Type: " + r.ReportType + "\n")
	b.WriteString("Duration: " + r.Duration.String() + "\n")
	b.WriteString("Generated: " + generatedDate(r.GeneratedAt) + "\n")
	b.WriteString("Log Count: " + strconv.Itoa(r.LogCount) + "\n\n")
	if r.HasDateRange() {
		b.WriteString("Date Range: " + r.StartDate + " to " + r.EndDate)
	}
	b.WriteString("\n\nSUMMARY\n")
	b.WriteString(strings.Repeat("-", 20))
	b.WriteString("\n" + r.Summary + "\n\n")
	b.WriteString("DETAILED LOGS\n")
	b.WriteString(strings.Repeat("-", 20))
	b.WriteString("\n")

	if len(r.Logs) == 0 {
		b.WriteString("No logs available")
	} else {
		entries := make([]string, len(r.Logs))
		for i, log := range r.Logs {
			entries[i] = formatReportLog(log)
		}
		b.WriteString(strings.Join(entries, "\n"))
	}
	b.WriteString("\n")
	return b.String()
}

func formatReportLog(log model.ReportLog) string {
	var b strings.Builder
	b.WriteString("\n" + log.Title + "\n")
	b.WriteString("Status: " + log.Status.String() + "\n")
	b.WriteString("Date: " + model.DatePart(log.Date) + "\n")
	b.WriteString("Inspector: " + orNotSpecified(log.Inspector) + "\n")
	b.WriteString("Location: " + orNotSpecified(log.Location) + "\n")
	b.WriteString("Description: " + log.Description + "\n")
	if log.Notes != "" {
		b.WriteString("Notes: " + log.Notes)
	}
	b.WriteString("\n")
	if n := len(log.Attachments); n > 0 {
		b.WriteString("Attachments: " + strconv.Itoa(n) + " file(s)")
	}
	b.WriteString("\n")
	return b.String()
}

func orNotSpecified(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}

func generatedDate(ts model.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.DateOnly)
}

// ReportFileName names the downloaded export after the report type and the download date.
func ReportFileName(r *model.GeneratedReport, now time.Time) string {
	return "construction-report-" + r.ReportType + "-" + now.UTC().Format(time.DateOnly) + ".txt"
}
