// Package search binds an index, a document store and a renderer to the
// results containers a search writes into.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mfenderov/blogsearch/internal/page"
	"github.com/mfenderov/blogsearch/internal/query"
	"github.com/mfenderov/blogsearch/internal/render"
	"github.com/mfenderov/blogsearch/internal/store"
)

// Options configures a Service.
type Options struct {
	Store  *store.Store
	Engine query.Engine
	Mode   render.Mode
}

// Service owns a built index and the store it was built from.
// It holds no per-container state and is safe for concurrent use.
type Service struct {
	store    *store.Store
	executor *query.Executor
	renderer *render.Renderer
}

// New creates a Service. Mode defaults to inline.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if opts.Mode == "" {
		opts.Mode = render.ModeInline
	}

	renderer, err := render.New(opts.Mode)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:    opts.Store,
		executor: query.New(opts.Engine),
		renderer: renderer,
	}, nil
}

// Store returns the snapshot the service searches.
func (s *Service) Store() *store.Store {
	return s.store
}

// Mode returns the render mode.
func (s *Service) Mode() render.Mode {
	return s.renderer.Mode()
}

// Shell returns the empty results container markup.
func (s *Service) Shell() (string, error) {
	return s.renderer.Render("", nil, s.store)
}

// Results runs term and resolves the hits to documents, best first.
// An empty term yields no results and no error.
func (s *Service) Results(ctx context.Context, term string) ([]render.Result, error) {
	refs, err := s.executor.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return render.Resolve(refs, s.store)
}

// Session binds the service to the results container on p.
func (s *Service) Session(p *page.Page) *Session {
	return &Session{svc: s, page: p, modal: page.NewModal(p)}
}

// NewSession binds the service to a fresh page.
func (s *Service) NewSession() *Session {
	return s.Session(page.New())
}

// Session is a service bound to one results container.
type Session struct {
	svc   *Service
	page  *page.Page
	modal *page.Modal
}

// Page returns the bound page.
func (s *Session) Page() *page.Page {
	return s.page
}

// Modal returns the modal lifecycle of the bound page.
func (s *Session) Modal() *page.Modal {
	return s.modal
}

// Search replaces the container's content with the results for term.
// The container is reset to the empty shell first, so a failed search
// leaves only the shell. In modal mode any non-empty term opens the modal.
func (s *Session) Search(ctx context.Context, term string) error {
	shell, err := s.svc.Shell()
	if err != nil {
		return err
	}
	s.page.SetContent(shell)

	refs, err := s.svc.executor.Search(ctx, term)
	if err != nil {
		return err
	}

	html, err := s.svc.renderer.Render(term, refs, s.svc.store)
	if err != nil {
		return fmt.Errorf("failed to render results for %q: %w", term, err)
	}
	s.page.SetContent(html)

	slog.Debug("search rendered", "term", term, "results", len(refs), "mode", s.svc.Mode())

	if s.svc.Mode() == render.ModeModal && !query.IsEmpty(term) {
		s.modal.Open()
	}
	return nil
}

// Dismiss closes the modal. It does nothing when the modal is closed.
func (s *Session) Dismiss() {
	s.modal.Dismiss()
}
