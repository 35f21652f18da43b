package http

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/sitelog/sitelog/pkg/usecase"
	"github.com/sitelog/sitelog/pkg/utils/safe"
)

// reportsState returns the session's reports state, fetching report types and
// saved reports the first time the view is opened or when refresh=1.
func (s *Server) reportsState(r *http.Request) *usecase.Reports {
	state, created := sessionFrom(r.Context()).reportsState()
	if created || r.URL.Query().Get("refresh") == "1" {
		s.uc.Reports.Load(r.Context(), state)
	}
	return state
}

func (s *Server) reportsHandler(w http.ResponseWriter, r *http.Request) {
	state := s.reportsState(r)
	if tab := r.URL.Query().Get("tab"); tab != "" {
		state.SetTab(types.ParseReportsTab(tab))
	}

	if notice := state.TakeNotice(); notice != "" {
		sessionFrom(r.Context()).addFlash(flashNotice, notice)
	}
	s.render.render(w, r, http.StatusOK, "reports.html", "Reports", state.View())
}

// generateReportHandler applies the selection from the form and generates.
// The request blocks until the backend answers.
func (s *Server) generateReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	state := s.reportsState(r)

	if typeID := r.FormValue("reportType"); typeID != "" {
		if err := s.uc.Reports.Select(state, typeID, r.FormValue("startDate"), r.FormValue("endDate")); err != nil {
			sess.addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgUnknownReportType))
			redirect(w, r, "/reports")
			return
		}
	}

	if err := s.uc.Reports.Generate(ctx, state); err != nil {
		// Backend failures show inline from the view state; the rest are alerts.
		if errors.Is(err, model.ErrValidation) || errors.Is(err, usecase.ErrActionInProgress) {
			sess.addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgGenerateReportFailed))
		}
	}
	redirect(w, r, "/reports")
}

func (s *Server) saveReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := s.reportsState(r)

	if _, err := s.uc.Reports.Save(ctx, state, r.FormValue("name")); err != nil {
		sessionFrom(ctx).addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgSaveReportFailed))
	}
	redirect(w, r, "/reports")
}

func (s *Server) clearReportHandler(w http.ResponseWriter, r *http.Request) {
	s.uc.Reports.Clear(s.reportsState(r))
	redirect(w, r, "/reports")
}

func (s *Server) openSavedReportHandler(w http.ResponseWriter, r *http.Request) {
	state := s.reportsState(r)
	if err := s.uc.Reports.OpenSaved(state, chi.URLParam(r, "id")); err != nil {
		sessionFrom(r.Context()).addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgSavedReportMissing))
		redirect(w, r, "/reports?tab=saved")
		return
	}
	redirect(w, r, "/reports")
}

// deleteSavedReportHandler deletes on the first click, without a confirm page.
func (s *Server) deleteSavedReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := s.reportsState(r)
	if err := s.uc.Reports.DeleteSaved(ctx, state, chi.URLParam(r, "id")); err != nil {
		sessionFrom(ctx).addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgDeleteReportFailed))
	}
	redirect(w, r, "/reports?tab=saved")
}

// downloadReportHandler serves the report on screen as a text file. It is
// formatted locally; the backend is not contacted.
func (s *Server) downloadReportHandler(w http.ResponseWriter, r *http.Request) {
	state, _ := sessionFrom(r.Context()).reportsState()
	report := s.uc.Reports.Current(state)
	if report == nil {
		s.render.renderError(w, r, http.StatusNotFound, usecase.MsgNoReportToSave)
		return
	}

	name := usecase.ReportFileName(report, s.uc.Now())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachmentDisposition(name))
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, []byte(usecase.FormatReportText(report)))
}

func attachmentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
