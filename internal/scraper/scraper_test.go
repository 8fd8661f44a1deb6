package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestScraper(depth int, follow bool) *Scraper {
	return New(Config{
		Delay:       10 * time.Millisecond,
		MaxDepth:    depth,
		FollowLinks: follow,
		UserAgent:   "test-agent",
	})
}

func TestScraper_FetchSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Home</title></head><body><h1>Welcome</h1></body></html>`))
	}))
	defer server.Close()

	pages, err := newTestScraper(1, false).Scrape(t.Context(), server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	p := pages[0]
	if !strings.HasPrefix(p.URL, server.URL) {
		t.Errorf("URL = %q, want prefix %q", p.URL, server.URL)
	}
	if !strings.Contains(p.Content, "Welcome") {
		t.Error("Content should contain the page body")
	}
	if p.ContentType != "text/html" {
		t.Errorf("ContentType = %q", p.ContentType)
	}
	if p.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestScraper_FollowsLinksWithinHost(t *testing.T) {
	site := map[string]string{
		"/":                         `<a href="/about/">About</a> <a href="/2024/12/12/go-facts.html#intro">Post</a> <a href="https://elsewhere.example.com/">Away</a>`,
		"/about/":                   `<h1>About Me</h1>`,
		"/2024/12/12/go-facts.html": `<h1>Go Facts</h1>`,
	}

	var external bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host != "" && strings.Contains(r.Host, "elsewhere") {
			external = true
		}
		content, ok := site[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>" + content + "</body></html>"))
	}))
	defer server.Close()

	pages, err := newTestScraper(2, true).Scrape(t.Context(), server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	urls := make(map[string]bool)
	for _, p := range pages {
		urls[p.URL] = true
	}
	if !urls[server.URL+"/about/"] {
		t.Error("should have fetched /about/")
	}
	if !urls[server.URL+"/2024/12/12/go-facts.html"] {
		t.Errorf("should have fetched the post without its fragment, got %v", urls)
	}
	if external {
		t.Error("should not leave the start host")
	}
}

func TestScraper_RespectsMaxDepth(t *testing.T) {
	site := map[string]string{
		"/":       `<a href="/level1">1</a>`,
		"/level1": `<a href="/level2">2</a>`,
		"/level2": `<a href="/level3">3</a>`,
		"/level3": `deep`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>" + site[r.URL.Path] + "</body></html>"))
	}))
	defer server.Close()

	pages, err := newTestScraper(2, true).Scrape(t.Context(), server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	urls := make(map[string]bool)
	for _, p := range pages {
		urls[p.URL] = true
	}
	if !urls[server.URL+"/level1"] {
		t.Error("should have fetched /level1")
	}
	if urls[server.URL+"/level3"] {
		t.Error("should not fetch beyond max depth")
	}
}

func TestScraper_SkipsErrorsAndAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body><a href="/broken">x</a><a href="/logo.png">y</a></body></html>`))
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 'P', 'N', 'G'})
		default:
			http.Error(w, "Internal Error", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	pages, err := newTestScraper(2, true).Scrape(t.Context(), server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(pages) != 1 {
		var urls []string
		for _, p := range pages {
			urls = append(urls, p.URL)
		}
		t.Errorf("expected only the home page, got %v", urls)
	}
}

func TestScraper_SetsUserAgent(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>Test</body></html>`))
	}))
	defer server.Close()

	if _, err := New(Config{MaxDepth: 1}).Scrape(t.Context(), server.URL); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if receivedUA != "blogsearch/1.0" {
		t.Errorf("User-Agent = %q, want default %q", receivedUA, "blogsearch/1.0")
	}
}

func TestScraper_PrefersMarkdownSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/post/":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body><p>rendered</p></body></html>`))
		case "/post.md":
			w.Header().Set("Content-Type", "text/markdown")
			w.Write([]byte("# Post\n\nsource"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := New(Config{MaxDepth: 1, PreferSource: true, Delay: 10 * time.Millisecond})
	pages, err := s.Scrape(t.Context(), server.URL+"/post/")
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Content != "# Post\n\nsource" || pages[0].ContentType != "text/markdown" {
		t.Errorf("expected markdown source, got %q (%s)", pages[0].Content, pages[0].ContentType)
	}
}

func TestScraper_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>x</body></html>`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	pages, err := newTestScraper(1, false).Scrape(ctx, server.URL)
	if err == nil {
		t.Error("expected context error")
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages))
	}
}
