package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/usecase"
	"github.com/sitelog/sitelog/pkg/utils/logging"
)

type Server struct {
	router       *chi.Mux
	uc           *usecase.UseCases
	render       *renderer
	sessions     *sessionStore
	sessionTTL   time.Duration
	sessionLimit int
}

type Options func(*Server)

func WithSessionTTL(ttl time.Duration) Options {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithSessionLimit(n int) Options {
	return func(s *Server) {
		if n > 0 {
			s.sessionLimit = n
		}
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	if uc == nil {
		return nil, goerr.New("use cases are required")
	}

	r := chi.NewRouter()

	s := &Server{
		router:       r,
		uc:           uc,
		sessionTTL:   DefaultSessionTTL,
		sessionLimit: DefaultSessionLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	rd, err := newRenderer()
	if err != nil {
		return nil, err
	}
	s.render = rd
	s.sessions = newSessionStore(s.sessionLimit, s.sessionTTL)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.sessions.middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/logs", http.StatusFound)
	})

	// Logs
	r.Get("/logs", s.logListHandler)
	r.Route("/logs/{id}", func(r chi.Router) {
		r.Get("/", s.logDetailHandler)
		r.Get("/edit", s.editFormHandler)
		r.Post("/edit", s.submitEditHandler)
		r.Get("/delete", s.confirmDeleteLogHandler)
		r.Post("/delete", s.deleteLogHandler)
		r.Post("/attachments", s.uploadHandler)
		r.Get("/attachments/{aid}/delete", s.confirmDeleteAttachmentHandler)
		r.Post("/attachments/{aid}/delete", s.deleteAttachmentHandler)
	})
	r.Get("/create", s.createFormHandler)
	r.Post("/create", s.submitCreateHandler)
	r.Get("/uploads/{filename}", s.uploadProxyHandler)
	r.Post("/api/ai/summarize", s.summarizeAPIHandler)

	// Reports
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", s.reportsHandler)
		r.Post("/generate", s.generateReportHandler)
		r.Post("/save", s.saveReportHandler)
		r.Post("/clear", s.clearReportHandler)
		r.Get("/download", s.downloadReportHandler)
		r.Post("/saved/{id}/open", s.openSavedReportHandler)
		r.Post("/saved/{id}/delete", s.deleteSavedReportHandler)
	})

	// Settings
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", s.settingsHandler)
		r.Post("/", s.saveSettingsHandler)
		r.Post("/reset", s.resetSettingsHandler)
		r.Get("/export", s.exportDataHandler)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.render.renderError(w, r, http.StatusNotFound, "Page not found")
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
