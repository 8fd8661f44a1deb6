package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mfenderov/blogsearch/internal/config"
	"github.com/mfenderov/blogsearch/internal/events"
	"github.com/mfenderov/blogsearch/internal/ingestion"
	"github.com/mfenderov/blogsearch/internal/pipeline"
	"github.com/mfenderov/blogsearch/internal/scraper"
	"github.com/mfenderov/blogsearch/internal/storage"
	"github.com/mfenderov/blogsearch/internal/store"
	"github.com/spf13/cobra"
)

var (
	crawlURL     string
	crawlSource  string
	crawlOut     string
	crawlPublish bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl a site into a document snapshot",
	Long: `Crawl a blog and write its pages as a document snapshot.

Each page becomes one document with a title and a plain-text body. Pages
are ordered by URL and numbered from 0, so repeated crawls of an unchanged
site produce the same ids.

Examples:
  # Crawl all configured sources
  blogsearch crawl

  # Crawl a specific URL into a file
  blogsearch crawl --url https://blog.example.com --out documents.json

  # Crawl and publish the snapshot to S3 (and index it when the engine
  # is elasticsearch)
  blogsearch crawl --url https://blog.example.com --publish`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVar(&crawlURL, "url", "", "URL to crawl directly")
	crawlCmd.Flags().StringVar(&crawlSource, "source", "", "Source name from config to crawl")
	crawlCmd.Flags().StringVar(&crawlOut, "out", "documents.json", "snapshot file to write")
	crawlCmd.Flags().BoolVar(&crawlPublish, "publish", false, "publish the snapshot to S3")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("crawl command starting", "verbose", verbose, "publish", crawlPublish)

	var urls []string
	if crawlURL != "" {
		urls = []string{crawlURL}
	} else {
		var err error
		urls, err = cfg.SourceURLs(crawlSource)
		if err != nil {
			return err
		}
	}

	p := pipeline.New(pipeline.Config{
		Scraper: scraper.Config{
			Delay:        cfg.Scraper.Delay,
			MaxDepth:     cfg.Scraper.MaxDepth,
			FollowLinks:  cfg.Scraper.FollowLinks,
			Timeout:      cfg.Scraper.Timeout,
			UserAgent:    cfg.Scraper.UserAgent,
			PreferSource: cfg.Scraper.PreferSource,
		},
	})

	var pub *publisher
	if crawlPublish {
		var err error
		pub, err = newPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		defer pub.close()
	}

	totalDocs := 0
	for _, u := range urls {
		fmt.Printf("Crawling: %s\n", u)

		result, err := p.Run(ctx, u)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}
		for _, e := range result.Errors {
			fmt.Printf("  Warning: %v\n", e)
		}

		out := outputPath(crawlOut, u, len(urls))
		if err := result.Store.WriteFile(out); err != nil {
			return err
		}
		totalDocs += result.Store.Len()
		fmt.Printf("  Pages: %d, Documents: %d, File: %s, Duration: %v\n",
			result.PagesFetched, result.Store.Len(), out, result.Duration)

		if pub != nil {
			if err := pub.publish(ctx, u, result.Store); err != nil {
				fmt.Printf("  Error: %v\n", err)
			}
		}
	}

	if pub != nil {
		pub.close()
	}

	fmt.Printf("\nTotal: %d documents from %d site(s)\n", totalDocs, len(urls))
	return nil
}

// outputPath names the snapshot file for siteURL. A single site writes to
// out; several sites get the host spliced in before the extension.
func outputPath(out, siteURL string, sites int) string {
	if sites <= 1 {
		return out
	}
	host := siteURL
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		host = u.Host
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "-" + host + ext
}

// publisher uploads snapshots and, for the elasticsearch engine, feeds them
// to an ingestion worker.
type publisher struct {
	storage   *storage.Client
	published chan events.SnapshotPublishedEvent
	done      chan struct{}
	closed    bool
}

func newPublisher(ctx context.Context, cfg config.Config) (*publisher, error) {
	storageClient, err := newStorageClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := storageClient.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	pub := &publisher{storage: storageClient}
	if cfg.Engine != config.EngineElasticsearch {
		return pub, nil
	}

	esClient, err := newESClient(cfg)
	if err != nil {
		return nil, err
	}

	pub.published = make(chan events.SnapshotPublishedEvent)
	pub.done = make(chan struct{})
	built := ingestion.New(storageClient, esClient).Run(ctx, pub.published)

	go func() {
		defer close(pub.done)
		for event := range built {
			if event.Err != nil {
				fmt.Printf("  Index error (%s): %v\n", event.Prefix, event.Err)
				continue
			}
			fmt.Printf("  Indexed %s: %d docs into %s in %v\n",
				event.Prefix, event.DocsIndexed, event.Index, event.Duration)
		}
	}()

	return pub, nil
}

func (p *publisher) publish(ctx context.Context, siteURL string, s *store.Store) error {
	prefix, err := storage.NewPrefix(siteURL)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.WriteJSON(&buf); err != nil {
		return err
	}
	if err := p.storage.PutSnapshot(ctx, prefix, buf.Bytes()); err != nil {
		return err
	}

	now := time.Now().UTC()
	docs := s.All()
	pages := make([]string, len(docs))
	for i, d := range docs {
		pages[i] = d.URL
	}
	if err := p.storage.PutMetadata(ctx, prefix, storage.Metadata{
		SourceURL:     siteURL,
		Timestamp:     now.Format(time.RFC3339),
		DocumentCount: s.Len(),
		Pages:         pages,
	}); err != nil {
		return err
	}
	fmt.Printf("  Published: %s/%s\n", p.storage.Bucket(), prefix)

	if p.published == nil {
		return nil
	}
	select {
	case p.published <- events.SnapshotPublishedEvent{
		Bucket:        p.storage.Bucket(),
		Prefix:        prefix,
		SourceURL:     siteURL,
		DocumentCount: s.Len(),
		Timestamp:     now,
	}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// close stops the ingestion worker and waits for it to drain.
func (p *publisher) close() {
	if p.closed || p.published == nil {
		return
	}
	p.closed = true
	close(p.published)
	<-p.done
}
