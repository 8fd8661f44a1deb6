package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mfenderov/blogsearch/internal/extract"
	"github.com/mfenderov/blogsearch/internal/scraper"
	"github.com/mfenderov/blogsearch/internal/store"
	"github.com/mfenderov/blogsearch/pkg/models"
)

// Config holds pipeline configuration.
type Config struct {
	Scraper scraper.Config
}

// Result holds the outcome of one snapshot run.
type Result struct {
	Store        *store.Store
	PagesFetched int
	Duration     time.Duration
	Errors       []error
}

// Pipeline crawls a site and turns it into a document snapshot.
type Pipeline struct {
	scraper   *scraper.Scraper
	extractor *extract.Extractor
}

// New creates a Pipeline.
func New(config Config) *Pipeline {
	return &Pipeline{
		scraper:   scraper.New(config.Scraper),
		extractor: extract.New(),
	}
}

// Run crawls startURL and builds a store from the pages found. Documents
// are ordered by URL so that repeated runs over an unchanged site assign
// the same ids. Pages that fail extraction are reported in Result.Errors
// and left out.
func (p *Pipeline) Run(ctx context.Context, startURL string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	pages, err := p.scraper.Scrape(ctx, startURL)
	if err != nil {
		if len(pages) == 0 {
			return nil, fmt.Errorf("crawl failed: %w", err)
		}
		result.Errors = append(result.Errors, err)
	}
	result.PagesFetched = len(pages)

	docs, errs := p.Extract(pages)
	result.Errors = append(result.Errors, errs...)

	s, err := store.New(docs)
	if err != nil {
		return nil, err
	}
	result.Store = s
	result.Duration = time.Since(start)

	slog.Debug("snapshot built", "url", startURL, "pages", len(pages), "documents", s.Len(), "duration", result.Duration)
	return result, nil
}

// Extract converts pages to documents ordered by URL with ids assigned by
// position. Duplicate URLs keep their first occurrence.
func (p *Pipeline) Extract(pages []models.Page) ([]models.Document, []error) {
	var errs []error
	seen := make(map[string]bool, len(pages))
	docs := make([]models.Document, 0, len(pages))

	for _, page := range pages {
		if seen[page.URL] {
			continue
		}
		seen[page.URL] = true

		doc, err := p.extractor.Extract(page)
		if err != nil {
			slog.Warn("skipping page", "url", page.URL, "error", err)
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].URL < docs[j].URL })
	for i := range docs {
		docs[i].ID = i
	}
	return docs, errs
}
