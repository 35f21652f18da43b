package usecase

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/sitelog/sitelog/pkg/utils/busy"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
)

// Reports is the state of the reports view for one user. It is safe for
// concurrent use; backend calls run without holding its lock.
type Reports struct {
	mu sync.Mutex

	tab          types.ReportsTab
	phase        Phase
	loadErr      string
	reportTypes  []model.ReportType
	savedReports []model.SavedReport

	selectedType string
	startDate    string
	endDate      string

	generated   *model.GeneratedReport
	generateErr string
	notice      string

	actions busy.Set
}

// ReportsView is a point in time copy of Reports for rendering.
type ReportsView struct {
	Tab          types.ReportsTab
	Phase        Phase
	LoadError    string
	ReportTypes  []model.ReportType
	SavedReports []model.SavedReport
	SelectedType *model.ReportType
	StartDate    string
	EndDate      string
	Generated    *model.GeneratedReport
	GenerateErr  string
	Notice       string
	Generating   bool
	Saving       bool
	CanGenerate  bool
}

func NewReports() *Reports {
	return &Reports{tab: types.ReportsTabGenerate}
}

func (r *Reports) View() ReportsView {
	r.mu.Lock()
	defer r.mu.Unlock()

	generating := r.actions.Has(actionGenerate)
	v := ReportsView{
		Tab:          r.tab,
		Phase:        r.phase,
		LoadError:    r.loadErr,
		ReportTypes:  slices.Clone(r.reportTypes),
		SavedReports: slices.Clone(r.savedReports),
		SelectedType: r.findType(r.selectedType),
		StartDate:    r.startDate,
		EndDate:      r.endDate,
		Generated:    r.generated,
		GenerateErr:  r.generateErr,
		Notice:       r.notice,
		Generating:   generating,
		Saving:       r.actions.Has(actionSave),
	}
	v.CanGenerate = canGenerate(v.SelectedType, r.startDate, r.endDate, generating)
	return v
}

// TakeNotice returns the pending one-shot notice and clears it.
func (r *Reports) TakeNotice() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.notice
	r.notice = ""
	return n
}

func (r *Reports) SetTab(tab types.ReportsTab) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tab = tab
}

// findType must be called with mu held.
func (r *Reports) findType(id string) *model.ReportType {
	for i := range r.reportTypes {
		if r.reportTypes[i].ID == id {
			rt := r.reportTypes[i]
			return &rt
		}
	}
	return nil
}

// canGenerate mirrors the generate button: a type must be selected, no
// generation may be pending and custom ranges need both dates.
func canGenerate(selected *model.ReportType, start, end string, generating bool) bool {
	if selected == nil || generating {
		return false
	}
	if selected.Duration.IsCustom() && (start == "" || end == "") {
		return false
	}
	return true
}

const (
	actionGenerate = "generate"
	actionSave     = "save"
)

type ReportsUseCase struct {
	reports interfaces.ReportClient
}

func NewReportsUseCase(reports interfaces.ReportClient) *ReportsUseCase {
	return &ReportsUseCase{reports: reports}
}

// Load fetches report types and saved reports into r, keeping any selection and
// generated report already in r.
func (uc *ReportsUseCase) Load(ctx context.Context, r *Reports) {
	index, err := uc.reports.GetReports(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to load reports")
		r.phase = PhaseFailed
		r.loadErr = MsgLoadReportsFailed
		return
	}
	r.phase = PhaseLoaded
	r.loadErr = ""
	r.reportTypes = index.ReportTypes
	r.savedReports = index.SavedReports
}

// refresh re-fetches after a successful action. A failure keeps the current
// lists since the action itself succeeded.
func (uc *ReportsUseCase) refresh(ctx context.Context, r *Reports) {
	index, err := uc.reports.GetReports(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to refresh reports")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = PhaseLoaded
	r.loadErr = ""
	r.reportTypes = index.ReportTypes
	r.savedReports = index.SavedReports
}

// Select chooses a report type and date range. Dates are ignored unless the
// type is custom.
func (uc *ReportsUseCase) Select(r *Reports, typeID, startDate, endDate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt := r.findType(typeID)
	if rt == nil {
		return newAlert(MsgUnknownReportType, goerr.Wrap(model.ErrNotFound, "unknown report type", goerr.V(ReportTypeKey, typeID)))
	}
	r.selectedType = rt.ID
	if rt.Duration.IsCustom() {
		r.startDate = startDate
		r.endDate = endDate
	}
	r.generateErr = ""
	return nil
}

// Generate asks the backend for a report of the selected type. Only one
// generation runs at a time per Reports. On success saved reports are re-fetched.
func (uc *ReportsUseCase) Generate(ctx context.Context, r *Reports) error {
	r.mu.Lock()
	selected := r.findType(r.selectedType)
	start, end := r.startDate, r.endDate
	switch {
	case selected == nil:
		r.mu.Unlock()
		return newAlert(MsgSelectReportType, goerr.Wrap(model.ErrValidation, "no report type selected"))
	case selected.Duration.IsCustom() && (start == "" || end == ""):
		r.mu.Unlock()
		return newAlert(MsgSelectDateRange, goerr.Wrap(model.ErrValidation, "custom report needs a date range"))
	}
	if !r.actions.TryAcquire(actionGenerate) {
		r.mu.Unlock()
		return inProgress(actionGenerate)
	}
	r.generateErr = ""
	r.mu.Unlock()
	defer r.actions.Release(actionGenerate)

	req := &model.GenerateReportRequest{
		Duration:   selected.Duration,
		ReportType: selected.ID,
	}
	if selected.Duration.IsCustom() {
		req.StartDate = start
		req.EndDate = end
	}

	report, err := uc.reports.GenerateReport(ctx, req)
	if err != nil {
		r.mu.Lock()
		r.generateErr = MsgGenerateReportFailed
		r.mu.Unlock()
		return newAlert(MsgGenerateReportFailed, errutil.Handle(ctx, err, "failed to generate report"))
	}

	r.mu.Lock()
	r.generated = report
	r.tab = types.ReportsTabGenerate
	r.mu.Unlock()

	uc.refresh(ctx, r)
	return nil
}

// Save stores the generated report under name. A blank name cancels the save
// and returns false without sending anything.
func (uc *ReportsUseCase) Save(ctx context.Context, r *Reports, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	r.mu.Lock()
	report := r.generated
	if report == nil {
		r.mu.Unlock()
		return false, newAlert(MsgNoReportToSave, goerr.Wrap(model.ErrValidation, "no generated report"))
	}
	if !r.actions.TryAcquire(actionSave) {
		r.mu.Unlock()
		return false, inProgress(actionSave)
	}
	r.mu.Unlock()
	defer r.actions.Release(actionSave)

	if _, err := uc.reports.SaveReport(ctx, &model.SaveReportRequest{GeneratedReport: *report, Name: name}); err != nil {
		return false, newAlert(MsgSaveReportFailed, errutil.Handle(ctx, err, "failed to save report"))
	}

	uc.refresh(ctx, r)

	r.mu.Lock()
	r.notice = MsgReportSaved
	r.mu.Unlock()
	return true, nil
}

// DeleteSaved removes a saved report. No confirmation is asked for.
func (uc *ReportsUseCase) DeleteSaved(ctx context.Context, r *Reports, id string) error {
	key := "delete:" + id
	if !r.actions.TryAcquire(key) {
		return inProgress(key)
	}
	defer r.actions.Release(key)

	if err := uc.reports.DeleteSavedReport(ctx, id); err != nil {
		return newAlert(MsgDeleteReportFailed, errutil.Handle(ctx, err, "failed to delete saved report"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedReports = slices.DeleteFunc(slices.Clone(r.savedReports), func(s model.SavedReport) bool {
		return s.ID == id
	})
	return nil
}

// OpenSaved shows a saved report as the current report on the generate tab.
func (uc *ReportsUseCase) OpenSaved(r *Reports, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.savedReports {
		if r.savedReports[i].ID == id {
			r.generated = r.savedReports[i].ToGenerated()
			r.tab = types.ReportsTabGenerate
			return nil
		}
	}
	return newAlert(MsgSavedReportMissing, goerr.Wrap(model.ErrNotFound, "saved report not found", goerr.V(ReportIDKey, id)))
}

// Clear discards the current report.
func (uc *ReportsUseCase) Clear(r *Reports) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generated = nil
	r.generateErr = ""
}

// Current returns the report on screen, or nil.
func (uc *ReportsUseCase) Current(r *Reports) *model.GeneratedReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generated
}
