package backend_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/sitelog/sitelog/pkg/service/backend"
	"github.com/sitelog/sitelog/pkg/service/backend/backendtest"
)

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := backend.New("localhost:3001")
	gt.Error(t, err)

	_, err = backend.New("ftp://example.com")
	gt.Error(t, err)

	c, err := backend.New("http://localhost:3001/")
	gt.NoError(t, err).Required()
	gt.String(t, c.BaseURL()).Equal("http://localhost:3001")
}

func TestLogLifecycle(t *testing.T) {
	srv := backendtest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()

	logs, err := client.ListLogs(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, logs).NotNil()
	gt.Array(t, logs).Length(0)

	created, err := client.CreateLog(ctx, &model.LogInput{
		Title:    "Foundation pour",
		Status:   types.StatusPending,
		Priority: types.PriorityHigh,
		Tags:     []string{"concrete"},
		Date:     "2024-04-01",
	})
	gt.NoError(t, err).Required()
	gt.String(t, created.ID).NotEqual("")
	gt.Value(t, created.Priority).Equal(types.PriorityHigh)

	updated, err := client.UpdateLog(ctx, created.ID, &model.LogInput{
		Title:    "Foundation pour (phase 2)",
		Status:   types.StatusCompleted,
		Priority: types.PriorityHigh,
		Tags:     []string{},
	})
	gt.NoError(t, err).Required()
	gt.String(t, updated.Title).Equal("Foundation pour (phase 2)")

	got, err := client.GetLog(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.StatusCompleted)

	gt.NoError(t, client.DeleteLog(ctx, created.ID)).Required()

	_, err = client.GetLog(ctx, created.ID)
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestAttachmentUploadAndDownload(t *testing.T) {
	srv := backendtest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	log := srv.SeedLog(model.Log{Title: "Electrical rough-in"})

	attachment, err := client.UploadAttachment(ctx, log.ID, `panel "A".txt`, "text/plain", strings.NewReader("breaker schedule"))
	gt.NoError(t, err).Required()
	gt.String(t, attachment.OriginalName).Equal(`panel "A".txt`)
	gt.Number(t, attachment.Size).Equal(int64(len("breaker schedule")))
	gt.String(t, attachment.MimeType).Equal("text/plain")

	download, err := client.OpenUpload(ctx, attachment.Filename)
	gt.NoError(t, err).Required()
	body, err := io.ReadAll(download.Body)
	gt.NoError(t, err)
	gt.NoError(t, download.Body.Close())
	gt.String(t, string(body)).Equal("breaker schedule")

	gt.NoError(t, client.DeleteAttachment(ctx, attachment.ID)).Required()
	stored, _ := srv.Log(log.ID)
	gt.Number(t, stored.AttachmentCount()).Equal(0)

	_, err = client.OpenUpload(ctx, attachment.Filename)
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestUploadFailureReason(t *testing.T) {
	srv := backendtest.NewServer(t)
	client := srv.Client(t)
	log := srv.SeedLog(model.Log{Title: "t"})
	path := "/api/logs/" + log.ID + "/attachments"

	srv.Fail(http.MethodPost, path, http.StatusRequestEntityTooLarge, "File too large")
	_, err := client.UploadAttachment(context.Background(), log.ID, "big.pdf", "application/pdf", strings.NewReader("x"))
	gt.Error(t, err)
	gt.String(t, backend.FailureReason(err)).Equal("File too large")

	srv.Fail(http.MethodPost, path, http.StatusInternalServerError, "")
	_, err = client.UploadAttachment(context.Background(), log.ID, "big.pdf", "application/pdf", strings.NewReader("x"))
	gt.String(t, backend.FailureReason(err)).Equal("Upload failed with status 500")

	apiErr, ok := backend.AsAPIError(err)
	gt.Bool(t, ok).True()
	gt.Number(t, apiErr.StatusCode).Equal(http.StatusInternalServerError)
}

func TestSummarize(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.SetSummary("Crew completed the slab pour.")

	summary, err := srv.Client(t).Summarize(context.Background(), "Poured slab on level 2")
	gt.NoError(t, err).Required()
	gt.String(t, summary).Equal("Crew completed the slab pour.")
}

func TestReports(t *testing.T) {
	srv := backendtest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	srv.SeedLog(model.Log{Title: "March", Date: "2024-03-10"})
	srv.SeedLog(model.Log{Title: "April", Date: "2024-04-10T08:00:00Z"})

	index, err := client.GetReports(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, index.ReportTypes).Length(4)
	gt.Array(t, index.SavedReports).Length(0)

	report, err := client.GenerateReport(ctx, &model.GenerateReportRequest{
		Duration:   types.DurationCustom,
		ReportType: "custom",
		StartDate:  "2024-04-01",
		EndDate:    "2024-04-30",
	})
	gt.NoError(t, err).Required()
	gt.Number(t, report.LogCount).Equal(1)
	gt.String(t, report.Logs[0].Title).Equal("April")

	saved, err := client.SaveReport(ctx, &model.SaveReportRequest{GeneratedReport: *report, Name: "April recap"})
	gt.NoError(t, err).Required()
	gt.String(t, saved.Name).Equal("April recap")
	gt.Array(t, saved.LogsData).Length(1)

	gt.NoError(t, client.DeleteSavedReport(ctx, saved.ID)).Required()
	gt.Error(t, client.DeleteSavedReport(ctx, saved.ID)).Is(model.ErrNotFound)
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client, err := backend.New(ts.URL)
	gt.NoError(t, err).Required()
	gt.NoError(t, client.DeleteLog(context.Background(), "a/b c"))
	gt.String(t, gotPath).Equal("/api/logs/a%2Fb%20c")
}

func TestListLogsWithLooseTimestamps(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": "1", "title": "No zone", "description": "d", "status": "pending", "priority": "low",
			 "createdAt": "2024-03-01T10:00:00.123", "updatedAt": "2024-03-01 10:00:00"},
			{"id": "2", "title": "Garbled", "description": "d", "status": "pending", "priority": "low",
			 "createdAt": "last tuesday"}
		]`)
	}))
	defer ts.Close()

	client, err := backend.New(ts.URL)
	gt.NoError(t, err).Required()
	logs, err := client.ListLogs(context.Background())
	gt.NoError(t, err).Required()
	gt.Array(t, logs).Length(2)
	if len(logs) != 2 {
		return
	}
	gt.String(t, logs[0].CreatedAt.Date()).Equal("2024-03-01")
	gt.String(t, logs[0].UpdatedAt.Date()).Equal("2024-03-01")
	gt.Bool(t, logs[1].CreatedAt.IsZero()).True()
}

func TestTimeout(t *testing.T) {
	srv := backendtest.NewServer(t)
	arrived, release := srv.Hold(http.MethodGet, "/api/logs")
	defer release()

	client := srv.Client(t, backend.WithTimeout(50*time.Millisecond))
	errCh := make(chan error, 1)
	go func() {
		_, err := client.ListLogs(context.Background())
		errCh <- err
	}()

	<-arrived
	gt.Error(t, <-errCh)
}
