package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/sitelog/sitelog/pkg/utils/async"
	"github.com/sitelog/sitelog/pkg/utils/busy"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
	"github.com/sitelog/sitelog/pkg/utils/logging"
)

// FormMode tells whether a LogForm creates a new log or edits an existing one.
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// LogForm holds the editable fields of the create and edit views as entered.
// Tags is the raw comma separated text.
type LogForm struct {
	// ID is empty when creating.
	ID string
	// Token identifies one rendering of the form so repeated submits can be detected.
	Token string

	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
	Tags        string
	Date        string
	Inspector   string
	Location    string
	Notes       string
	AISummary   string

	// Phase and Error describe loading an existing log in edit mode.
	Phase Phase
	Error string
}

func (f *LogForm) Mode() FormMode {
	if f.ID == "" {
		return FormModeCreate
	}
	return FormModeEdit
}

// CanSummarize reports whether the description has content to summarize.
func (f *LogForm) CanSummarize() bool {
	return strings.TrimSpace(f.Description) != ""
}

// Input converts the form to a backend payload, validating it first.
func (f *LogForm) Input() (*model.LogInput, error) {
	if strings.TrimSpace(f.Title) == "" {
		return nil, newAlert(MsgTitleRequired, goerr.Wrap(model.ErrValidation, "title is required", goerr.V(model.FieldKey, "title")))
	}
	if !f.CanSummarize() {
		return nil, newAlert(MsgDescriptionRequired, goerr.Wrap(model.ErrValidation, "description is required", goerr.V(model.FieldKey, "description")))
	}

	status, err := types.ParseStatus(f.Status)
	if err != nil {
		return nil, newAlert(MsgInvalidField, goerr.Wrap(model.ErrValidation, "invalid status", goerr.V(model.FieldKey, "status")))
	}
	priority, err := types.ParsePriority(f.Priority)
	if err != nil {
		return nil, newAlert(MsgInvalidField, goerr.Wrap(model.ErrValidation, "invalid priority", goerr.V(model.FieldKey, "priority")))
	}
	category, err := types.ParseCategory(f.Category)
	if err != nil {
		return nil, newAlert(MsgInvalidField, goerr.Wrap(model.ErrValidation, "invalid category", goerr.V(model.FieldKey, "category")))
	}

	input := &model.LogInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    category,
		Priority:    priority,
		Status:      status,
		Tags:        model.ParseTags(f.Tags),
		Date:        f.Date,
		Inspector:   f.Inspector,
		Location:    f.Location,
		Notes:       f.Notes,
		AISummary:   f.AISummary,
	}
	if err := input.Validate(); err != nil {
		return nil, newAlert(MsgInvalidField, err)
	}
	return input, nil
}

// NewLogForm returns an empty create form with default priority, status and today's date.
func NewLogForm(now time.Time) *LogForm {
	return &LogForm{
		Token:    uuid.NewString(),
		Priority: types.DefaultPriority.String(),
		Status:   types.DefaultStatus.String(),
		Date:     now.Format(time.DateOnly),
		Phase:    PhaseLoaded,
	}
}

// FormFromLog pre-fills an edit form from an existing log.
func FormFromLog(log *model.Log, now time.Time) *LogForm {
	return &LogForm{
		ID:          log.ID,
		Token:       uuid.NewString(),
		Title:       log.Title,
		Description: log.Description,
		Category:    log.Category.String(),
		Priority:    log.Priority.String(),
		Status:      log.Status.String(),
		Tags:        model.JoinTags(log.Tags),
		Date:        FormatDateForInput(log.Date, now),
		Inspector:   log.Inspector,
		Location:    log.Location,
		Notes:       log.Notes,
		AISummary:   log.AISummary,
		Phase:       PhaseLoaded,
	}
}

// FormatDateForInput converts a stored date to YYYY-MM-DD for a date input.
// Empty or unparseable values become today's date.
func FormatDateForInput(s string, now time.Time) string {
	if s == "" {
		return now.Format(time.DateOnly)
	}
	t, err := model.ParseTimestamp(s)
	if err != nil || t.IsZero() {
		return now.Format(time.DateOnly)
	}
	return t.Format(time.DateOnly)
}

type LogFormUseCase struct {
	logs     interfaces.LogClient
	summary  interfaces.SummaryClient
	inflight *busy.Set
	settings *SettingsUseCase
	notifier interfaces.Notifier
	now      func() time.Time
}

func NewLogFormUseCase(logs interfaces.LogClient, summary interfaces.SummaryClient, inflight *busy.Set, settings *SettingsUseCase, notifier interfaces.Notifier, now func() time.Time) *LogFormUseCase {
	return &LogFormUseCase{
		logs:     logs,
		summary:  summary,
		inflight: inflight,
		settings: settings,
		notifier: notifier,
		now:      now,
	}
}

// New returns a blank create form.
func (uc *LogFormUseCase) New() *LogForm {
	return NewLogForm(uc.now())
}

// Edit loads the log with id into an edit form. On failure the form is in the
// failed phase with an alert message and no fields filled.
func (uc *LogFormUseCase) Edit(ctx context.Context, id string) *LogForm {
	log, err := uc.logs.GetLog(ctx, id)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to load log for editing")
		return &LogForm{ID: id, Token: uuid.NewString(), Phase: PhaseFailed, Error: MsgLoadFormFailed}
	}
	return FormFromLog(log, uc.now())
}

// Submit creates or updates the log described by form. A second submit of the
// same form while the first is pending is rejected. Nothing is sent when
// validation fails.
func (uc *LogFormUseCase) Submit(ctx context.Context, form *LogForm) (*model.Log, error) {
	input, err := form.Input()
	if err != nil {
		return nil, err
	}

	if form.Token == "" {
		form.Token = uuid.NewString()
	}
	key := "submit:" + form.Token
	if !uc.inflight.TryAcquire(key) {
		return nil, inProgress(key)
	}
	defer uc.inflight.Release(key)

	if form.Mode() == FormModeEdit {
		updated, err := uc.logs.UpdateLog(ctx, form.ID, input)
		if err != nil {
			return nil, newAlert(MsgSaveLogFailed, errutil.Handle(ctx, err, "failed to update log"))
		}
		if updated.ID == "" {
			updated.ID = form.ID
		}
		return updated, nil
	}

	created, err := uc.logs.CreateLog(ctx, input)
	if err != nil {
		return nil, newAlert(MsgSaveLogFailed, errutil.Handle(ctx, err, "failed to create log"))
	}
	uc.announce(ctx, created)
	return created, nil
}

// Summarize fills form.AISummary from the backend. The summary field is left
// untouched when the request fails.
func (uc *LogFormUseCase) Summarize(ctx context.Context, form *LogForm) error {
	if !form.CanSummarize() {
		return newAlert(MsgDescriptionRequired, goerr.Wrap(model.ErrValidation, "description is required", goerr.V(model.FieldKey, "description")))
	}

	if form.Token == "" {
		form.Token = uuid.NewString()
	}
	key := "summarize:" + form.Token
	if !uc.inflight.TryAcquire(key) {
		return inProgress(key)
	}
	defer uc.inflight.Release(key)

	summary, err := uc.summary.Summarize(ctx, form.Description)
	if err != nil {
		return newAlert(MsgSummaryFailed, errutil.Handle(ctx, err, "failed to generate AI summary"))
	}
	form.AISummary = summary
	return nil
}

// announce posts a safety alert for a freshly created log when alerts are enabled.
// It never blocks or fails the create.
func (uc *LogFormUseCase) announce(ctx context.Context, log *model.Log) {
	if uc.notifier == nil || uc.settings == nil || !log.IsSafetyAlert() {
		return
	}

	site := uc.settings.Current(ctx)
	if !site.Notifications.SafetyAlerts {
		logging.From(ctx).Debug("safety alerts disabled, skipping", "log_id", log.ID)
		return
	}

	async.Dispatch(ctx, "safety-alert", func(ctx context.Context) error {
		return uc.notifier.NotifySafetyAlert(ctx, site, log)
	})
}
