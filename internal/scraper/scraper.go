package scraper

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mfenderov/blogsearch/internal/extract"
	"github.com/mfenderov/blogsearch/pkg/models"
)

// Config holds crawler configuration.
type Config struct {
	Delay        time.Duration
	MaxDepth     int
	FollowLinks  bool
	UserAgent    string
	Timeout      time.Duration
	PreferSource bool // fetch a post's markdown source when the site publishes it
}

// Scraper crawls a site and returns the raw pages.
type Scraper struct {
	config     Config
	httpClient *http.Client
}

// New creates a Scraper with the given configuration.
func New(config Config) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "blogsearch/1.0"
	}
	return &Scraper{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Scrape fetches startURL and, when FollowLinks is set, every page on the
// same host reachable within MaxDepth. Pages are returned in fetch order;
// error responses and binary assets are skipped.
func (s *Scraper) Scrape(ctx context.Context, startURL string) ([]models.Page, error) {
	var pages []models.Page
	var mu sync.Mutex
	var cancelled atomic.Bool

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("starting crawl", "url", startURL, "max_depth", s.config.MaxDepth)

	start, err := url.Parse(startURL)
	if err != nil {
		slog.Error("failed to parse URL", "url", startURL, "error", err)
		return nil, err
	}

	c := colly.NewCollector(
		colly.MaxDepth(s.config.MaxDepth),
		colly.UserAgent(s.config.UserAgent),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       s.config.Delay,
		Parallelism: 2,
	})
	c.SetRequestTimeout(s.config.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("crawl cancelled", "url", r.URL.String())
			r.Abort()
			cancelled.Store(true)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Debug("skipping page", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= 400 {
			return
		}

		pageURL := r.Request.URL.String()
		content := string(r.Body)
		contentType := r.Headers.Get("Content-Type")

		if !isText(contentType) {
			slog.Debug("skipping non-text page", "url", pageURL, "content_type", contentType)
			return
		}

		if s.config.PreferSource {
			if src, srcType, ok := s.fetchSource(ctx, pageURL); ok {
				slog.Debug("using markdown source", "url", pageURL)
				content, contentType = src, srcType
			}
		}

		slog.Debug("fetched page", "url", pageURL, "content_type", contentType, "size", len(content))

		mu.Lock()
		pages = append(pages, models.Page{
			URL:         pageURL,
			Content:     content,
			ContentType: contentType,
			FetchedAt:   time.Now(),
		})
		mu.Unlock()
	})

	if s.config.FollowLinks {
		c.OnHTML("a[href]", func(e *colly.HTMLElement) {
			link, err := url.Parse(e.Request.AbsoluteURL(e.Attr("href")))
			if err != nil || link.Host != start.Host {
				return
			}
			link.Fragment = ""
			e.Request.Visit(link.String())
		})
	}

	if err := c.Visit(startURL); err != nil {
		slog.Debug("visit error (continuing)", "url", startURL, "error", err)
		return pages, nil
	}
	c.Wait()

	if cancelled.Load() {
		slog.Info("crawl cancelled by context", "pages", len(pages))
		return pages, ctx.Err()
	}

	slog.Debug("crawl complete", "url", startURL, "pages", len(pages))
	return pages, nil
}

// isText accepts HTML, markdown and plain text. A missing header counts as text.
func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") || strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}

// fetchSource tries the markdown source URLs of pageURL in order.
func (s *Scraper) fetchSource(ctx context.Context, pageURL string) (string, string, bool) {
	for _, src := range extract.SourceURLs(pageURL) {
		if ctx.Err() != nil {
			return "", "", false
		}
		if content, contentType, ok := s.fetchMarkdown(ctx, src); ok {
			return content, contentType, true
		}
	}
	return "", "", false
}

func (s *Scraper) fetchMarkdown(ctx context.Context, src string) (string, string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", "", false
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", false
	}

	content := string(body)
	contentType := resp.Header.Get("Content-Type")
	if !extract.IsMarkdown(src, contentType, content) {
		return "", "", false
	}
	return content, contentType, true
}
