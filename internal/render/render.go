package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mfenderov/blogsearch/internal/store"
	"github.com/mfenderov/blogsearch/pkg/models"
)

// ErrUnknownRef is returned when a search hit does not resolve to a document.
var ErrUnknownRef = errors.New("reference does not match any document")

// Mode selects the markup wrapped around the result list.
type Mode string

const (
	ModeInline Mode = "inline"
	ModeModal  Mode = "modal"
)

// ParseMode validates a mode name from configuration or flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeInline, ModeModal:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown render mode %q (want %q or %q)", s, ModeInline, ModeModal)
	}
}

// Fixed text of the single entry shown when a search matches nothing.
const (
	NoResultsInline = "No results found..."
	NoResultsModal  = "Sorry, no results found. Close & try a different search!"
)

// Result is one rendered list entry.
type Result struct {
	Ref     int     `json:"ref"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
}

// Resolve maps refs back to their documents, keeping the ranking order.
func Resolve(refs []models.Ref, s *store.Store) ([]Result, error) {
	results := make([]Result, 0, len(refs))
	for _, ref := range refs {
		doc, ok := s.Get(ref.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownRef, ref.ID)
		}
		results = append(results, Result{
			Ref:     doc.ID,
			Score:   ref.Score,
			Title:   doc.Title,
			URL:     doc.URL,
			Snippet: Snippet(doc.Body),
		})
	}
	return results, nil
}

// view is the data handed to the templates.
type view struct {
	Term      string
	Results   []Result
	NoResults string
	Compact   bool
}

// Renderer turns search results into the results container's HTML.
type Renderer struct {
	mode Mode
}

// New creates a Renderer for mode.
func New(mode Mode) (*Renderer, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	return &Renderer{mode: mode}, nil
}

// Mode returns the renderer's mode.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Render resolves refs against s and returns the container HTML.
// An empty term renders the empty shell only.
func (r *Renderer) Render(term string, refs []models.Ref, s *store.Store) (string, error) {
	results, err := Resolve(refs, s)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.RenderResults(&buf, term, results); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderResults writes the container HTML for already resolved results.
func (r *Renderer) RenderResults(w io.Writer, term string, results []Result) error {
	v := view{Term: term, Results: results}
	if term == "" {
		v.Results = nil
	}

	name := "inline"
	v.NoResults = NoResultsInline
	if r.mode == ModeModal {
		name = "modal"
		v.NoResults = NoResultsModal
		v.Compact = true
	}

	if err := templates.ExecuteTemplate(w, name, v); err != nil {
		return fmt.Errorf("failed to render %s results: %w", r.mode, err)
	}
	return nil
}
