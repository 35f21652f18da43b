// Package backendtest provides an in-process fake of the construction log REST API
// for tests that exercise the real HTTP client.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/sitelog/sitelog/pkg/service/backend"
)

type failure struct {
	status  int
	message string
}

type hold struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Server is a fake backend. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	nextID      int
	logs        []*model.Log
	files       map[string][]byte
	reportTypes []model.ReportType
	saved       []model.SavedReport
	failures    map[string]failure
	holds       map[string]*hold
	calls       map[string]int
	summary     string
	now         func() time.Time
}

// NewServer starts a fake backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		files:    make(map[string][]byte),
		failures: make(map[string]failure),
		holds:    make(map[string]*hold),
		calls:    make(map[string]int),
		summary:  "AI summary",
		now:      time.Now,
		reportTypes: []model.ReportType{
			{ID: "daily", Name: "Daily Report", Description: "Summary of the last 24 hours", Duration: types.DurationDay, Icon: "calendar"},
			{ID: "weekly", Name: "Weekly Report", Description: "Summary of the last 7 days", Duration: types.DurationWeek, Icon: "calendar-days"},
			{ID: "monthly", Name: "Monthly Report", Description: "Summary of the last 30 days", Duration: types.DurationMonth, Icon: "calendar-range"},
			{ID: "custom", Name: "Custom Report", Description: "Pick a start and end date", Duration: types.DurationCustom, Icon: "sliders"},
		},
	}

	r := chi.NewRouter()
	r.Use(s.intercept)
	r.Route("/api", func(r chi.Router) {
		r.Get("/logs", s.listLogs)
		r.Post("/logs", s.createLog)
		r.Get("/logs/{id}", s.getLog)
		r.Put("/logs/{id}", s.updateLog)
		r.Delete("/logs/{id}", s.deleteLog)
		r.Post("/logs/{id}/attachments", s.uploadAttachment)
		r.Delete("/attachments/{id}", s.deleteAttachment)
		r.Post("/ai/summarize", s.summarize)
		r.Get("/reports", s.getReports)
		r.Post("/reports/generate", s.generateReport)
		r.Post("/reports/save", s.saveReport)
		r.Delete("/reports/{id}", s.deleteReport)
	})
	r.Get("/uploads/{filename}", s.serveUpload)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns a real backend client pointed at the fake.
func (s *Server) Client(t testing.TB, opts ...backend.Option) *backend.Client {
	t.Helper()
	c, err := backend.New(s.URL, opts...)
	if err != nil {
		t.Fatalf("failed to create backend client: %v", err)
	}
	return c
}

// SetNow fixes the clock used for created and generated timestamps.
func (s *Server) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = func() time.Time { return now }
}

// SetSummary sets the text returned by the summarize endpoint.
func (s *Server) SetSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}

// SeedLog stores log as if it had been created, assigning an ID when missing.
func (s *Server) SeedLog(log model.Log) *model.Log {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log.ID == "" {
		log.ID = s.newID()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = model.NewTimestamp(s.now())
	}
	if log.UpdatedAt.IsZero() {
		log.UpdatedAt = log.CreatedAt
	}
	stored := log
	s.logs = append(s.logs, &stored)
	cp := stored
	return &cp
}

// SeedSavedReport stores a saved report, assigning an ID when missing.
func (s *Server) SeedSavedReport(report model.SavedReport) model.SavedReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == "" {
		report.ID = s.newID()
	}
	s.saved = append(s.saved, report)
	return report
}

// Log returns a copy of the stored log with id.
func (s *Server) Log(id string) (*model.Log, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.ID == id {
			cp := *l
			cp.Attachments = slices.Clone(l.Attachments)
			return &cp, true
		}
	}
	return nil, false
}

// LogCount returns the number of stored logs.
func (s *Server) LogCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

func (s *Server) SavedReports() []model.SavedReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

// File returns the content stored under filename.
func (s *Server) File(filename string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[filename]
	return data, ok
}

// Fail makes requests matching method and path answer status with a JSON message.
// An empty message sends an empty body.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Recover removes a failure installed by Fail.
func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Hold blocks requests matching method and path until release is called. The
// arrived channel is closed when the first matching request is being held.
func (s *Server) Hold(method, path string) (arrived <-chan struct{}, release func()) {
	h := &hold{arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.holds[method+" "+path] = h
	s.mu.Unlock()

	var releaseOnce sync.Once
	return h.arrived, func() {
		releaseOnce.Do(func() {
			s.mu.Lock()
			delete(s.holds, method+" "+path)
			s.mu.Unlock()
			close(h.release)
		})
	}
}

// Calls returns how many requests matched method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func (s *Server) newID() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.calls[key]++
		f, failing := s.failures[key]
		h := s.holds[key]
		s.mu.Unlock()

		if h != nil {
			h.once.Do(func() { close(h.arrived) })
			select {
			case <-h.release:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
}

func (s *Server) findLog(id string) (int, *model.Log) {
	for i, l := range s.logs {
		if l.ID == id {
			return i, l
		}
	}
	return -1, nil
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.logs)
}

func (s *Server) getLog(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, l := s.findLog(chi.URLParam(r, "id"))
	if l == nil {
		notFound(w, "log")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func decodeInput(r *http.Request) (*model.LogInput, error) {
	var in model.LogInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, err
	}
	return &in, nil
}

func applyInput(l *model.Log, in *model.LogInput) {
	l.Title = in.Title
	l.Description = in.Description
	l.Category = in.Category
	l.Priority = in.Priority
	l.Status = in.Status
	l.Tags = in.Tags
	l.Date = in.Date
	l.Inspector = in.Inspector
	l.Location = in.Location
	l.Notes = in.Notes
	l.AISummary = in.AISummary
}

func (s *Server) createLog(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil || in.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := model.NewTimestamp(s.now())
	l := &model.Log{ID: s.newID(), CreatedAt: now, UpdatedAt: now}
	applyInput(l, in)
	s.logs = append(s.logs, l)
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) updateLog(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, l := s.findLog(chi.URLParam(r, "id"))
	if l == nil {
		notFound(w, "log")
		return
	}
	applyInput(l, in)
	l.UpdatedAt = model.NewTimestamp(s.now())
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) deleteLog(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, l := s.findLog(chi.URLParam(r, "id"))
	if l == nil {
		notFound(w, "log")
		return
	}
	s.logs = slices.Delete(s.logs, i, i+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Log deleted"})
}

func (s *Server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "No file uploaded"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unreadable file"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, l := s.findLog(chi.URLParam(r, "id"))
	if l == nil {
		notFound(w, "log")
		return
	}

	id := s.newID()
	stored := fmt.Sprintf("%d-%s", s.now().UnixNano(), header.Filename)
	s.files[stored] = data
	a := model.Attachment{
		ID:           id,
		Filename:     stored,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         int64(len(data)),
		URL:          model.UploadPath(stored),
	}
	l.Attachments = append(l.Attachments, a)
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		for i, a := range l.Attachments {
			if a.ID == id {
				delete(s.files, a.Filename)
				l.Attachments = slices.Delete(l.Attachments, i, i+1)
				writeJSON(w, http.StatusOK, map[string]string{"message": "Attachment deleted"})
				return
			}
		}
	}
	notFound(w, "attachment")
}

func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.files[chi.URLParam(r, "filename")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return
	}
	s.mu.Lock()
	summary := s.summary
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) getReports(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, model.ReportsIndex{
		ReportTypes:  s.reportTypes,
		SavedReports: append([]model.SavedReport{}, s.saved...),
	})
}

func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReportType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reportType is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logs := []model.ReportLog{}
	for _, l := range s.logs {
		date := model.DatePart(l.Date)
		if req.StartDate != "" && date < req.StartDate {
			continue
		}
		if req.EndDate != "" && date > req.EndDate {
			continue
		}
		logs = append(logs, model.ReportLog{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Status:      l.Status,
			Priority:    l.Priority,
			Date:        l.Date,
			Inspector:   l.Inspector,
			Location:    l.Location,
			Notes:       l.Notes,
			CreatedAt:   l.CreatedAt,
			Attachments: l.Attachments,
		})
	}

	writeJSON(w, http.StatusOK, model.GeneratedReport{
		ID:          s.newID(),
		ReportType:  req.ReportType,
		Duration:    req.Duration,
		GeneratedAt: model.NewTimestamp(s.now()),
		LogCount:    len(logs),
		Summary:     fmt.Sprintf("%d logs recorded in this period.", len(logs)),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Logs:        logs,
	})
}

func (s *Server) saveReport(w http.ResponseWriter, r *http.Request) {
	var req model.SaveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	saved := model.SavedReport{
		ID:          s.newID(),
		Name:        req.Name,
		ReportType:  req.ReportType,
		Duration:    req.Duration,
		GeneratedAt: req.GeneratedAt,
		LogCount:    req.LogCount,
		Summary:     req.Summary,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		LogsData:    req.Logs,
	}
	s.saved = append(s.saved, saved)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rep := range s.saved {
		if rep.ID == id {
			s.saved = slices.Delete(s.saved, i, i+1)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Report deleted"})
			return
		}
	}
	notFound(w, "report")
}
