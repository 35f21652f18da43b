package usecase_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/sitelog/sitelog/pkg/usecase"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  chan *model.Log
	sites []*model.SiteSettings
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan *model.Log, 4)}
}

func (n *recordingNotifier) NotifySafetyAlert(ctx context.Context, site *model.SiteSettings, log *model.Log) error {
	n.mu.Lock()
	n.sites = append(n.sites, site)
	n.mu.Unlock()
	n.sent <- log
	return nil
}

func TestNewLogForm(t *testing.T) {
	uc, _ := setupUseCases(t)
	f := uc.LogForm.New()

	gt.Value(t, f.Mode()).Equal(usecase.FormModeCreate)
	gt.Value(t, f.Priority).Equal("medium")
	gt.Value(t, f.Status).Equal("pending")
	gt.Value(t, f.Date).Equal("2024-06-15")
	gt.String(t, f.Token).NotEqual("")
	gt.Bool(t, f.CanSummarize()).False()
}

func TestFormatDateForInput(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty uses today", in: "", want: "2024-06-15"},
		{name: "date only", in: "2024-01-02", want: "2024-01-02"},
		{name: "timestamp", in: "2024-01-02T15:04:05.000Z", want: "2024-01-02"},
		{name: "garbage uses today", in: "next tuesday", want: "2024-06-15"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, usecase.FormatDateForInput(tc.in, fixedNow)).Equal(tc.want)
		})
	}
}

func TestLogFormSubmitCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("blank title is rejected without a request", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		f := uc.LogForm.New()
		f.Title = "   "

		_, err := uc.LogForm.Submit(ctx, f)
		gt.Error(t, err).Is(model.ErrValidation)
		gt.Value(t, usecase.AlertMessage(err, "")).Equal(usecase.MsgTitleRequired)
		gt.Value(t, srv.Calls(http.MethodPost, "/api/logs")).Equal(0)
	})

	t.Run("blank description is rejected without a request", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		f := uc.LogForm.New()
		f.Title = "Slab pour"
		f.Description = " \t "

		_, err := uc.LogForm.Submit(ctx, f)
		gt.Error(t, err).Is(model.ErrValidation)
		gt.Value(t, usecase.AlertMessage(err, "")).Equal(usecase.MsgDescriptionRequired)
		gt.Value(t, srv.Calls(http.MethodPost, "/api/logs")).Equal(0)
	})

	t.Run("invalid priority is rejected", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		f := uc.LogForm.New()
		f.Title = "Valid"
		f.Description = "Logged from the site office"
		f.Priority = "urgent"

		_, err := uc.LogForm.Submit(ctx, f)
		gt.Error(t, err).Is(model.ErrValidation)
		gt.Value(t, usecase.AlertMessage(err, "")).Equal(usecase.MsgInvalidField)
		gt.Value(t, srv.LogCount()).Equal(0)
	})

	t.Run("creates with parsed tags", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		f := uc.LogForm.New()
		f.Title = "Rebar inspection"
		f.Description = "Level 3 slab"
		f.Category = "inspection"
		f.Tags = " rebar, level-3 ,, slab "
		f.Inspector = "K. Lee"

		created, err := uc.LogForm.Submit(ctx, f)
		gt.NoError(t, err).Required()
		gt.String(t, created.ID).NotEqual("")

		stored, ok := srv.Log(created.ID)
		gt.Bool(t, ok).True()
		gt.Value(t, stored.Tags).Equal([]string{"rebar", "level-3", "slab"})
		gt.Value(t, stored.Category).Equal(types.CategoryInspection)
		gt.Value(t, stored.Date).Equal("2024-06-15")
		gt.Value(t, stored.Inspector).Equal("K. Lee")
	})

	t.Run("backend failure alerts", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		srv.Fail(http.MethodPost, "/api/logs", http.StatusInternalServerError, "nope")
		f := uc.LogForm.New()
		f.Title = "Will fail"
		f.Description = "Logged from the site office"

		_, err := uc.LogForm.Submit(ctx, f)
		gt.Value(t, usecase.AlertMessage(err, "")).Equal(usecase.MsgSaveLogFailed)
	})

	t.Run("repeated submit of the same form while pending is rejected", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		arrived, release := srv.Hold(http.MethodPost, "/api/logs")
		defer release()

		f := uc.LogForm.New()
		f.Title = "Once only"
		f.Description = "Logged from the site office"
		done := make(chan error, 1)
		go func() {
			_, err := uc.LogForm.Submit(ctx, f)
			done <- err
		}()
		<-arrived

		again := *f
		_, err := uc.LogForm.Submit(ctx, &again)
		gt.Error(t, err).Is(usecase.ErrActionInProgress)
		gt.Array(t, uc.InFlight()).Has("submit:" + f.Token)

		release()
		gt.NoError(t, <-done)
		gt.Value(t, srv.LogCount()).Equal(1)
		gt.Array(t, uc.InFlight()).Length(0)
	})
}

func TestLogFormEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("pre-fills from the stored log", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{
			Title:       "HVAC duct",
			Description: "Return duct on the roof",
			Status:      types.StatusInProgress,
			Priority:    types.PriorityHigh,
			Category:    types.CategoryHVAC,
			Tags:        []string{"duct", "roof"},
			Date:        "2024-02-03T00:00:00.000Z",
		})

		f := uc.LogForm.Edit(ctx, l.ID)
		gt.Value(t, f.Phase).Equal(usecase.PhaseLoaded)
		gt.Value(t, f.Mode()).Equal(usecase.FormModeEdit)
		gt.Value(t, f.Tags).Equal("duct, roof")
		gt.Value(t, f.Date).Equal("2024-02-03")
		gt.Value(t, f.Status).Equal("in-progress")

		f.Title = "HVAC duct sealed"
		f.Status = "completed"
		updated, err := uc.LogForm.Submit(ctx, f)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.ID).Equal(l.ID)

		stored, _ := srv.Log(l.ID)
		gt.Value(t, stored.Title).Equal("HVAC duct sealed")
		gt.Value(t, stored.Status).Equal(types.StatusCompleted)
		gt.Value(t, srv.LogCount()).Equal(1)
	})

	t.Run("load failure yields the failed phase", func(t *testing.T) {
		uc, _ := setupUseCases(t)
		f := uc.LogForm.Edit(ctx, "missing")
		gt.Value(t, f.Phase).Equal(usecase.PhaseFailed)
		gt.Value(t, f.Error).Equal(usecase.MsgLoadFormFailed)
		gt.Value(t, f.Title).Equal("")
	})
}

func TestLogFormSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("empty description sends nothing", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		f := uc.LogForm.New()
		f.Description = "  "

		err := uc.LogForm.Summarize(ctx, f)
		gt.Value(t, usecase.AlertMessage(err, "")).Equal(usecase.MsgDescriptionRequired)
		gt.Value(t, srv.Calls(http.MethodPost, "/api/ai/summarize")).Equal(0)
	})

	t.Run("fills the summary", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		srv.SetSummary("Crack found in beam B4.")
		f := uc.LogForm.New()
		f.Description = "Long description of a crack in beam B4"

		gt.NoError(t, uc.LogForm.Summarize(ctx, f)).Required()
		gt.Value(t, f.AISummary).Equal("Crack found in beam B4.")
	})

	t.Run("failure keeps the previous summary", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		srv.Fail(http.MethodPost, "/api/ai/summarize", http.StatusInternalServerError, "model offline")
		f := uc.LogForm.New()
		f.Description = "Something"
		f.AISummary = "earlier summary"

		err := uc.LogForm.Summarize(ctx, f)
		gt.Value(t, usecase.AlertMessage(err, "")).Equal(usecase.MsgSummaryFailed)
		gt.Value(t, f.AISummary).Equal("earlier summary")
	})
}

func TestLogFormSafetyAlert(t *testing.T) {
	ctx := context.Background()

	t.Run("critical log raises an alert", func(t *testing.T) {
		n := newRecordingNotifier()
		uc, _ := setupUseCases(t, usecase.WithNotifier(n))
		f := uc.LogForm.New()
		f.Title = "Collapsed trench"
		f.Description = "Logged from the site office"
		f.Priority = "critical"

		created, err := uc.LogForm.Submit(ctx, f)
		gt.NoError(t, err).Required()

		select {
		case got := <-n.sent:
			gt.Value(t, got.ID).Equal(created.ID)
		case <-time.After(5 * time.Second):
			t.Fatal("safety alert was not sent")
		}
	})

	t.Run("routine log raises nothing", func(t *testing.T) {
		n := newRecordingNotifier()
		uc, _ := setupUseCases(t, usecase.WithNotifier(n))
		f := uc.LogForm.New()
		f.Title = "Paint touch-up"
		f.Description = "Logged from the site office"

		_, err := uc.LogForm.Submit(ctx, f)
		gt.NoError(t, err).Required()

		select {
		case <-n.sent:
			t.Fatal("unexpected safety alert")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("disabled in settings raises nothing", func(t *testing.T) {
		n := newRecordingNotifier()
		uc, _ := setupUseCases(t, usecase.WithNotifier(n))
		s := uc.Settings.Defaults()
		s.Notifications.SafetyAlerts = false
		gt.NoError(t, uc.Settings.Save(ctx, s)).Required()

		f := uc.LogForm.New()
		f.Title = "Fall hazard"
		f.Description = "Logged from the site office"
		f.Category = "safety"
		_, err := uc.LogForm.Submit(ctx, f)
		gt.NoError(t, err).Required()

		select {
		case <-n.sent:
			t.Fatal("unexpected safety alert")
		case <-time.After(100 * time.Millisecond):
		}
	})
}
