package interfaces

import (
	"context"
	"io"

	"github.com/sitelog/sitelog/pkg/domain/model"
)

// LogClient reads and writes construction logs in the backend.
type LogClient interface {
	ListLogs(ctx context.Context) ([]*model.Log, error)
	GetLog(ctx context.Context, id string) (*model.Log, error)
	CreateLog(ctx context.Context, input *model.LogInput) (*model.Log, error)
	UpdateLog(ctx context.Context, id string, input *model.LogInput) (*model.Log, error)
	DeleteLog(ctx context.Context, id string) error
}

// AttachmentClient manages files attached to logs.
type AttachmentClient interface {
	UploadAttachment(ctx context.Context, logID, filename, contentType string, content io.Reader) (*model.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error
	OpenUpload(ctx context.Context, filename string) (*model.Download, error)
}

// SummaryClient asks the backend to summarize free text.
type SummaryClient interface {
	Summarize(ctx context.Context, description string) (string, error)
}

// ReportClient generates and manages reports.
type ReportClient interface {
	GetReports(ctx context.Context) (*model.ReportsIndex, error)
	GenerateReport(ctx context.Context, req *model.GenerateReportRequest) (*model.GeneratedReport, error)
	SaveReport(ctx context.Context, req *model.SaveReportRequest) (*model.SavedReport, error)
	DeleteSavedReport(ctx context.Context, id string) error
}

// Backend is the full REST API surface the views depend on.
type Backend interface {
	LogClient
	AttachmentClient
	SummaryClient
	ReportClient
}
