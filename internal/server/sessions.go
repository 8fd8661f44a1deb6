package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/mfenderov/blogsearch/internal/page"
)

const (
	sessionCookie      = "blogsearch_session"
	defaultMaxSessions = 10000
)

// sessions maps browser sessions to their results container. When full,
// the oldest session is forgotten.
type sessions struct {
	mu    sync.Mutex
	pages map[string]*page.Page
	order []string
	max   int
}

func newSessions(max int) *sessions {
	if max <= 0 {
		max = defaultMaxSessions
	}
	return &sessions{pages: make(map[string]*page.Page), max: max}
}

// page returns the caller's page, starting a session if the request has
// no known session cookie.
func (s *sessions) page(w http.ResponseWriter, r *http.Request) *page.Page {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		p, ok := s.pages[c.Value]
		s.mu.Unlock()
		if ok {
			return p
		}
	}

	id := uuid.NewString()
	p := page.New()

	s.mu.Lock()
	if len(s.order) >= s.max {
		delete(s.pages, s.order[0])
		s.order = s.order[1:]
	}
	s.pages[id] = p
	s.order = append(s.order, id)
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return p
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}
