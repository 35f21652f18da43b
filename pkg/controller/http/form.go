package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/usecase"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
	"github.com/sitelog/sitelog/pkg/utils/safe"
)

const (
	formActionSave      = "save"
	formActionSummarize = "summarize"
)

type logFormPage struct {
	*usecase.LogForm
	Action string
	Cancel string
	Alert  string
}

func formPage(form *usecase.LogForm, alert string) logFormPage {
	p := logFormPage{LogForm: form, Action: "/create", Cancel: "/logs", Alert: alert}
	if form.Mode() == usecase.FormModeEdit {
		p.Action = "/logs/" + url.PathEscape(form.ID) + "/edit"
		p.Cancel = "/logs/" + url.PathEscape(form.ID)
	}
	return p
}

func formTitle(form *usecase.LogForm) string {
	if form.Mode() == usecase.FormModeEdit {
		return "Edit Log"
	}
	return "Create New Log"
}

// formFromRequest rebuilds the form as the user submitted it. The mode comes
// from the route, never from the body.
func formFromRequest(r *http.Request, id string) *usecase.LogForm {
	return &usecase.LogForm{
		ID:          id,
		Token:       r.PostFormValue("token"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Category:    r.PostFormValue("category"),
		Priority:    r.PostFormValue("priority"),
		Status:      r.PostFormValue("status"),
		Tags:        r.PostFormValue("tags"),
		Date:        r.PostFormValue("date"),
		Inspector:   r.PostFormValue("inspector"),
		Location:    r.PostFormValue("location"),
		Notes:       r.PostFormValue("notes"),
		AISummary:   r.PostFormValue("aiSummary"),
		Phase:       usecase.PhaseLoaded,
	}
}

func (s *Server) createFormHandler(w http.ResponseWriter, r *http.Request) {
	form := s.uc.LogForm.New()
	s.render.render(w, r, http.StatusOK, "log_form.html", formTitle(form), formPage(form, ""))
}

func (s *Server) editFormHandler(w http.ResponseWriter, r *http.Request) {
	form := s.uc.LogForm.Edit(r.Context(), chi.URLParam(r, "id"))
	s.render.render(w, r, http.StatusOK, "log_form.html", formTitle(form), formPage(form, form.Error))
}

func (s *Server) submitCreateHandler(w http.ResponseWriter, r *http.Request) {
	s.submitForm(w, r, "")
}

func (s *Server) submitEditHandler(w http.ResponseWriter, r *http.Request) {
	s.submitForm(w, r, chi.URLParam(r, "id"))
}

// submitForm handles both the save and the AI summary buttons. A failed save
// re-renders the form with everything the user typed.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse log form"), http.StatusBadRequest)
		return
	}
	form := formFromRequest(r, id)

	if r.PostFormValue("action") == formActionSummarize {
		alert := ""
		if err := s.uc.LogForm.Summarize(ctx, form); err != nil {
			alert = usecase.AlertMessage(err, usecase.MsgSummaryFailed)
		}
		s.render.render(w, r, http.StatusOK, "log_form.html", formTitle(form), formPage(form, alert))
		return
	}

	log, err := s.uc.LogForm.Submit(ctx, form)
	if err != nil {
		status := http.StatusOK
		if !errors.Is(err, usecase.ErrActionInProgress) {
			status = http.StatusUnprocessableEntity
		}
		s.render.render(w, r, status, "log_form.html", formTitle(form), formPage(form, usecase.AlertMessage(err, usecase.MsgSaveLogFailed)))
		return
	}

	if form.Mode() == usecase.FormModeEdit {
		redirect(w, r, "/logs/"+url.PathEscape(log.ID))
		return
	}
	redirect(w, r, "/logs")
}

type summarizeRequest struct {
	Description string `json:"description"`
}

type summarizeResponse struct {
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// summarizeAPIHandler lets the form page fill the summary without a full
// reload when scripts are available.
func (s *Server) summarizeAPIHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, summarizeResponse{Error: "invalid request body"})
		return
	}

	form := &usecase.LogForm{Description: req.Description}
	if err := s.uc.LogForm.Summarize(ctx, form); err != nil {
		status := http.StatusBadGateway
		if !form.CanSummarize() {
			status = http.StatusBadRequest
		}
		writeJSON(w, r, status, summarizeResponse{Error: usecase.AlertMessage(err, usecase.MsgSummaryFailed)})
		return
	}
	writeJSON(w, r, http.StatusOK, summarizeResponse{Summary: form.AISummary})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
