package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sitelog/sitelog/pkg/usecase"
)

const (
	sessionCookie = "sitelog_session"

	// DefaultSessionTTL is how long an idle browser keeps its view state.
	DefaultSessionTTL = 2 * time.Hour
	// DefaultSessionLimit bounds the number of live sessions.
	DefaultSessionLimit = 1024
)

type flashKind string

const (
	flashAlert  flashKind = "alert"
	flashNotice flashKind = "notice"
)

type flash struct {
	Kind    flashKind
	Message string
}

// session is the per-browser view state. Each view keeps its own copy of
// backend data; nothing is shared between sessions.
type session struct {
	id string

	mu      sync.Mutex
	list    *usecase.LogList
	reports *usecase.Reports
	flashes []flash
}

func (s *session) addFlash(kind flashKind, msg string) {
	if msg == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, flash{Kind: kind, Message: msg})
}

func (s *session) takeFlashes() []flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flashes
	s.flashes = nil
	return f
}

func (s *session) logList() *usecase.LogList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

func (s *session) setLogList(l *usecase.LogList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = l
}

// reportsState returns the reports view state and whether it was just created.
func (s *session) reportsState() (*usecase.Reports, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reports == nil {
		s.reports = usecase.NewReports()
		return s.reports, true
	}
	return s.reports, false
}

type sessionStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *session]
	ttl   time.Duration
}

func newSessionStore(size int, ttl time.Duration) *sessionStore {
	return &sessionStore{
		cache: expirable.NewLRU[string, *session](size, nil, ttl),
		ttl:   ttl,
	}
}

// load returns the session named by the request cookie, creating one and
// setting the cookie when it is missing or expired.
func (st *sessionStore) load(w http.ResponseWriter, r *http.Request) *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if s, ok := st.cache.Get(c.Value); ok {
			return s
		}
	}

	s := &session{id: uuid.NewString()}
	st.cache.Add(s.id, s)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(st.ttl.Seconds()),
	})
	return s
}

type ctxSessionKey struct{}

func (st *sessionStore) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := st.load(w, r)
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *session {
	if s, ok := ctx.Value(ctxSessionKey{}).(*session); ok {
		return s
	}
	return &session{id: uuid.NewString()}
}
