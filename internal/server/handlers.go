package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mfenderov/blogsearch/internal/page"
	"github.com/mfenderov/blogsearch/internal/query"
	"github.com/mfenderov/blogsearch/internal/render"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.services.Service().Store().Len(),
	})
}

// handleIndex shows the page with whatever the session's container holds.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.page(w, r)
	s.renderPage(w, http.StatusOK, p, "", "")
}

// handleSearch runs the search trigger for the session and re-renders the page.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	p := s.sessions.page(w, r)

	if err := s.services.Service().Session(p).Search(r.Context(), term); err != nil {
		status := statusFor(err)
		slog.Warn("search failed", "term", term, "status", status, "error", err)
		s.renderPage(w, status, p, term, err.Error())
		return
	}
	s.renderPage(w, http.StatusOK, p, term, "")
}

// handleDismiss closes the session's modal. Script callers get 204,
// form posts are redirected back to the page.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.page(w, r)
	s.services.Service().Session(p).Dismiss()

	if r.Header.Get("X-Requested-With") != "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type searchResponse struct {
	Term    string          `json:"term"`
	Results []render.Result `json:"results"`
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	results, err := s.services.Service().Results(r.Context(), term)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if results == nil {
		results = []render.Result{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Term: term, Results: results})
}

func (s *Server) handleAPIDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("document id must be an integer"))
		return
	}

	doc, ok := s.services.Service().Store().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("document not found"))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, p *page.Page, term, errMsg string) {
	svc := s.services.Service()

	content := p.Content()
	if content == "" {
		shell, err := svc.Shell()
		if err != nil {
			slog.Error("failed to render results shell", "error", err)
		}
		content = shell
	}

	view := pageView{
		Term:        term,
		Results:     template.HTML(content),
		Visible:     p.Visible(),
		Modal:       svc.Mode() == render.ModeModal,
		BodyClasses: strings.Join(p.BodyClasses(), " "),
		Error:       errMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, view); err != nil {
		slog.Error("failed to render page", "error", err)
	}
}

// statusFor maps search errors to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, query.ErrInvalidQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
