package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mfenderov/blogsearch/pkg/models"
)

// ErrInvalidQuery marks engine errors caused by the search term's syntax.
var ErrInvalidQuery = errors.New("invalid query")

// Engine is a full-text engine holding an index over the document store.
// Search returns every match for term, most relevant first.
type Engine interface {
	Search(ctx context.Context, term string) ([]models.Ref, error)
}

// Executor runs search terms against an Engine.
type Executor struct {
	engine Engine
}

// New creates an Executor over engine.
func New(engine Engine) *Executor {
	return &Executor{engine: engine}
}

// Search returns the engine's ranking for term.
// An empty term is not sent to the engine and yields no results.
// Whitespace is a term like any other and goes to the engine.
// Engine errors, including invalid query syntax, are returned to the caller.
func (e *Executor) Search(ctx context.Context, term string) ([]models.Ref, error) {
	if IsEmpty(term) {
		slog.Debug("empty search term, skipping query")
		return nil, nil
	}

	refs, err := e.engine.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search %q failed: %w", term, err)
	}
	return refs, nil
}

// IsEmpty reports whether no term was given.
func IsEmpty(term string) bool {
	return term == ""
}
