package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/blogsearch/internal/events"
	"github.com/mfenderov/blogsearch/internal/store"
	"github.com/mfenderov/blogsearch/pkg/models"
)

// SnapshotSource reads published snapshots. *storage.Client satisfies it.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, prefix string) ([]byte, error)
}

// Builder replaces a remote index with a snapshot's documents.
// *elasticsearch.Client satisfies it.
type Builder interface {
	Build(ctx context.Context, docs []models.Document) error
	Index() string
}

// Result holds ingestion execution results.
type Result struct {
	Prefix      string
	DocsIndexed int
	Duration    time.Duration
}

// Engine loads snapshots from S3 and builds the remote index from them.
type Engine struct {
	source  SnapshotSource
	builder Builder
}

// New creates a new ingestion engine.
func New(source SnapshotSource, builder Builder) *Engine {
	return &Engine{source: source, builder: builder}
}

// Ingest rebuilds the index from the snapshot stored under prefix.
// Documents are submitted in store order; a snapshot that fails the store's
// validation is rejected before the index is touched.
func (e *Engine) Ingest(ctx context.Context, prefix string) (*Result, error) {
	start := time.Now()
	slog.Info("starting ingestion", "prefix", prefix, "index", e.builder.Index())

	data, err := e.source.GetSnapshot(ctx, prefix)
	if err != nil {
		return nil, err
	}

	s, err := store.Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", prefix, err)
	}

	if err := e.builder.Build(ctx, s.All()); err != nil {
		return nil, fmt.Errorf("failed to build index from %s: %w", prefix, err)
	}

	result := &Result{Prefix: prefix, DocsIndexed: s.Len(), Duration: time.Since(start)}
	slog.Info("ingestion complete",
		"prefix", prefix,
		"docs_indexed", result.DocsIndexed,
		"duration", result.Duration)
	return result, nil
}

// Run ingests every published snapshot received on published until the
// channel is closed, reporting each outcome on the returned channel.
// The returned channel is closed once published is drained.
func (e *Engine) Run(ctx context.Context, published <-chan events.SnapshotPublishedEvent) <-chan events.IndexBuiltEvent {
	built := make(chan events.IndexBuiltEvent)

	go func() {
		defer close(built)
		for event := range published {
			out := events.IndexBuiltEvent{Prefix: event.Prefix, Index: e.builder.Index()}

			result, err := e.Ingest(ctx, event.Prefix)
			if err != nil {
				slog.Error("ingestion failed", "prefix", event.Prefix, "error", err)
				out.Err = err
			} else {
				out.DocsIndexed = result.DocsIndexed
				out.Duration = result.Duration
			}

			select {
			case built <- out:
			case <-ctx.Done():
				return
			}
		}
	}()

	return built
}
