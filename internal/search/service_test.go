package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mfenderov/blogsearch/internal/index"
	"github.com/mfenderov/blogsearch/internal/page"
	"github.com/mfenderov/blogsearch/internal/render"
	"github.com/mfenderov/blogsearch/internal/store"
	"github.com/mfenderov/blogsearch/pkg/models"
)

func newService(t *testing.T, mode render.Mode) *Service {
	t.Helper()

	s := store.Default()
	idx, err := index.Build(s.All())
	if err != nil {
		t.Fatalf("index.Build() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	svc, err := New(Options{Store: s, Engine: idx, Mode: mode})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

type failingEngine struct{ err error }

func (f failingEngine) Search(context.Context, string) ([]models.Ref, error) {
	return nil, f.err
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Options{Engine: failingEngine{}}); err == nil {
		t.Error("expected error without store")
	}
	if _, err := New(Options{Store: store.Default()}); err == nil {
		t.Error("expected error without engine")
	}
	if _, err := New(Options{Store: store.Default(), Engine: failingEngine{}, Mode: "popup"}); err == nil {
		t.Error("expected error for unknown mode")
	}

	svc, err := New(Options{Store: store.Default(), Engine: failingEngine{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if svc.Mode() != render.ModeInline {
		t.Errorf("default mode = %q, want inline", svc.Mode())
	}
}

func TestSession_SearchGo(t *testing.T) {
	svc := newService(t, render.ModeModal)
	sess := svc.NewSession()

	if err := sess.Search(context.Background(), "Go"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	content := sess.Page().Content()
	if !strings.Contains(content, "Search results for 'Go'") {
		t.Errorf("missing heading: %s", content)
	}
	for _, id := range []int{5, 6} {
		doc, _ := svc.Store().Get(id)
		if !strings.Contains(content, doc.Title) {
			t.Errorf("results should include document %d", id)
		}
	}
	if strings.Count(content, `class="lunrsearchresult"`) < 2 {
		t.Errorf("expected at least two entries: %s", content)
	}
	if sess.Modal().State() != page.Open {
		t.Error("modal should open for a non-blank term")
	}
	if !sess.Page().HasBodyClass(page.BodyClassModalOpen) {
		t.Error("body should carry modal-open")
	}
}

func TestSession_SearchNoResults(t *testing.T) {
	svc := newService(t, render.ModeInline)
	sess := svc.NewSession()

	if err := sess.Search(context.Background(), "zzzznotfound"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	content := sess.Page().Content()
	if strings.Count(content, `class="lunrsearchresult"`) != 1 {
		t.Fatalf("expected one entry: %s", content)
	}
	if !strings.Contains(content, render.NoResultsInline) {
		t.Errorf("missing no-results text: %s", content)
	}
}

func TestSession_EmptyTerm(t *testing.T) {
	svc := newService(t, render.ModeModal)
	sess := svc.NewSession()

	if err := sess.Search(context.Background(), ""); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if strings.Contains(sess.Page().Content(), "lunrsearchresult") {
		t.Error("empty term should render the shell only")
	}
	if sess.Modal().State() != page.Closed {
		t.Error("empty term should not open the modal")
	}
}

func TestSession_WhitespaceTerm(t *testing.T) {
	tests := []struct {
		mode      render.Mode
		noResults string
		wantOpen  bool
	}{
		{render.ModeInline, render.NoResultsInline, false},
		{render.ModeModal, "Sorry, no results found.", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			sess := newService(t, tt.mode).NewSession()

			if err := sess.Search(context.Background(), "  "); err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			content := sess.Page().Content()
			if !strings.Contains(content, "Search results for '  '") {
				t.Errorf("missing heading: %s", content)
			}
			if strings.Count(content, `class="lunrsearchresult"`) != 1 || !strings.Contains(content, tt.noResults) {
				t.Errorf("want a single no-results entry: %s", content)
			}
			if got := sess.Modal().State() == page.Open; got != tt.wantOpen {
				t.Errorf("modal open = %v, want %v", got, tt.wantOpen)
			}
		})
	}
}

func TestSession_RepeatedSearchReplacesContent(t *testing.T) {
	svc := newService(t, render.ModeInline)
	sess := svc.NewSession()
	ctx := context.Background()

	if err := sess.Search(ctx, "GORM"); err != nil {
		t.Fatal(err)
	}
	first := sess.Page().Content()

	if err := sess.Search(ctx, "GORM"); err != nil {
		t.Fatal(err)
	}
	if got := sess.Page().Content(); got != first {
		t.Errorf("repeated search changed the container:\n%s\n%s", first, got)
	}

	if err := sess.Search(ctx, "zzzznotfound"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sess.Page().Content(), "GORM") {
		t.Error("previous results should be replaced, not accumulated")
	}
}

func TestSession_EngineErrorLeavesShell(t *testing.T) {
	engineErr := errors.New("boom")
	svc, err := New(Options{Store: store.Default(), Engine: failingEngine{err: engineErr}})
	if err != nil {
		t.Fatal(err)
	}
	sess := svc.NewSession()
	sess.Page().SetContent("<ul><li>stale</li></ul>")

	err = sess.Search(context.Background(), "Go")
	if !errors.Is(err, engineErr) {
		t.Fatalf("Search() error = %v, want %v", err, engineErr)
	}
	if got := sess.Page().Content(); got != "<ul></ul>" {
		t.Errorf("content after failure = %q, want empty shell", got)
	}
}

func TestSession_InvalidSyntax(t *testing.T) {
	sess := newService(t, render.ModeInline).NewSession()
	if err := sess.Search(context.Background(), "title:>"); err == nil {
		t.Error("expected error for invalid query syntax")
	}
}

func TestSession_Dismiss(t *testing.T) {
	svc := newService(t, render.ModeModal)
	p := page.New()
	p.AddBodyClass("home")
	sess := svc.Session(p)

	sess.Dismiss()
	if len(p.BodyClasses()) != 1 {
		t.Errorf("dismiss on a closed modal changed the body: %v", p.BodyClasses())
	}

	if err := sess.Search(context.Background(), "Go"); err != nil {
		t.Fatal(err)
	}
	sess.Dismiss()

	if p.Visible() || p.HasBodyClass(page.BodyClassModalOpen) {
		t.Error("dismiss should hide the container and clear modal-open")
	}
	if !p.HasBodyClass("home") {
		t.Error("dismiss should keep other body classes")
	}
}

func TestService_Results(t *testing.T) {
	svc := newService(t, render.ModeInline)

	results, err := svc.Results(context.Background(), "GORM")
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if len(results) == 0 || results[0].Ref != 5 {
		t.Fatalf("expected document 5 first, got %+v", results)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not ordered by score: %+v", results)
		}
	}

	none, err := svc.Results(context.Background(), "")
	if err != nil || len(none) != 0 {
		t.Errorf("empty term Results() = %v, %v", none, err)
	}
}

func TestHolder_Swap(t *testing.T) {
	first := newService(t, render.ModeInline)
	second := newService(t, render.ModeModal)

	h := NewHolder(first)
	if h.Service() != first {
		t.Fatal("Service() should return the initial service")
	}
	if old := h.Swap(second); old != first {
		t.Error("Swap() should return the replaced service")
	}
	if h.Service() != second {
		t.Error("Service() should return the swapped-in service")
	}
}
