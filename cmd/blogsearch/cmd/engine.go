package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mfenderov/blogsearch/internal/config"
	"github.com/mfenderov/blogsearch/internal/elasticsearch"
	"github.com/mfenderov/blogsearch/internal/index"
	"github.com/mfenderov/blogsearch/internal/query"
	"github.com/mfenderov/blogsearch/internal/render"
	"github.com/mfenderov/blogsearch/internal/search"
	"github.com/mfenderov/blogsearch/internal/storage"
	"github.com/mfenderov/blogsearch/internal/store"
)

// loadStore returns the configured snapshot, or the embedded one.
func loadStore(cfg config.Config) (*store.Store, error) {
	if cfg.Store.Path == "" {
		return store.Default(), nil
	}
	s, err := store.LoadFile(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return s, nil
}

func newESClient(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

func newStorageClient(cfg config.Config) (*storage.Client, error) {
	if cfg.Storage.Endpoint == "" {
		return nil, fmt.Errorf("storage not configured - set storage.endpoint")
	}
	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

// buildEngine builds the configured engine's index over s. The returned
// func releases the index.
func buildEngine(ctx context.Context, cfg config.Config, s *store.Store) (query.Engine, func(), error) {
	switch cfg.Engine {
	case config.EngineElasticsearch:
		client, err := newESClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		if !client.Ping(ctx) {
			return nil, nil, fmt.Errorf("elasticsearch not reachable at %v", cfg.Elasticsearch.Addresses)
		}
		if err := client.Build(ctx, s.All()); err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	default:
		idx, err := index.Build(s.All())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build index: %w", err)
		}
		return idx, func() {
			if err := idx.Close(); err != nil {
				slog.Warn("failed to close index", "error", err)
			}
		}, nil
	}
}

// buildService indexes s and binds it to a renderer for mode.
func buildService(ctx context.Context, cfg config.Config, s *store.Store, mode string) (*search.Service, func(), error) {
	m, err := render.ParseMode(mode)
	if err != nil {
		return nil, nil, err
	}

	engine, release, err := buildEngine(ctx, cfg, s)
	if err != nil {
		return nil, nil, err
	}

	svc, err := search.New(search.Options{Store: s, Engine: engine, Mode: m})
	if err != nil {
		release()
		return nil, nil, err
	}
	return svc, release, nil
}
