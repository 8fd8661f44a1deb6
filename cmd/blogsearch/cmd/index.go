package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfenderov/blogsearch/internal/ingestion"
	"github.com/spf13/cobra"
)

var (
	indexPrefix string
	indexSite   string
	indexOut    string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the Elasticsearch index from a published snapshot",
	Long: `Build the Elasticsearch index from a snapshot published with
'blogsearch crawl --publish'. The index is dropped and rebuilt from
scratch; it is never updated incrementally.

Examples:
  # Index a specific snapshot
  blogsearch index --prefix snapshots/blog.example.com/2026-01-02T15-04-05-abc12345

  # Index the latest snapshot of a site and keep a local copy
  blogsearch index --site blog.example.com --out documents.json`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringVar(&indexPrefix, "prefix", "", "snapshot prefix to index")
	indexCmd.Flags().StringVar(&indexSite, "site", "", "index the latest snapshot of this host")
	indexCmd.Flags().StringVar(&indexOut, "out", "", "also download the snapshot to this file")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("index command starting", "prefix", indexPrefix, "site", indexSite)

	if indexPrefix == "" && indexSite == "" {
		return fmt.Errorf("one of --prefix or --site is required")
	}

	storageClient, err := newStorageClient(cfg)
	if err != nil {
		return err
	}
	esClient, err := newESClient(cfg)
	if err != nil {
		return err
	}

	prefix := indexPrefix
	if prefix == "" {
		prefixes, err := storageClient.ListSnapshots(ctx, indexSite)
		if err != nil {
			return err
		}
		if len(prefixes) == 0 {
			return fmt.Errorf("no snapshots published for %s", indexSite)
		}
		prefix = prefixes[len(prefixes)-1]
	}

	if indexOut != "" {
		data, err := storageClient.GetSnapshot(ctx, prefix)
		if err != nil {
			return err
		}
		if err := os.WriteFile(indexOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
	}

	fmt.Printf("Indexing: %s\n", prefix)
	if meta, err := storageClient.GetMetadata(ctx, prefix); err == nil {
		fmt.Printf("  Source: %s (%d documents, %s)\n", meta.SourceURL, meta.DocumentCount, meta.Timestamp)
	} else {
		slog.Debug("snapshot metadata unavailable", "prefix", prefix, "error", err)
	}

	result, err := ingestion.New(storageClient, esClient).Ingest(ctx, prefix)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Index: %s\n", esClient.Index())
	fmt.Printf("  Docs indexed: %d\n", result.DocsIndexed)
	fmt.Printf("  Duration: %v\n", result.Duration)
	return nil
}
