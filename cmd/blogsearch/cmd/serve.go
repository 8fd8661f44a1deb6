package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mfenderov/blogsearch/internal/search"
	"github.com/mfenderov/blogsearch/internal/server"
	"github.com/mfenderov/blogsearch/internal/store"
	"github.com/spf13/cobra"
)

// retireDelay is how long a replaced index stays open for in-flight searches.
const retireDelay = 30 * time.Second

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search page and JSON API",
	Long: `Serve the search page, the dismiss handler and the JSON search API.

Routes:
  GET  /                    search page
  GET  /search?q=TERM       run a search and show the results
  POST /dismiss             close the results modal
  GET  /api/search?q=TERM   JSON results
  GET  /api/documents/{id}  one document
  GET  /healthz             health check

With --watch the snapshot file (store.path) is watched and every change
rebuilds the index from scratch.

Example:
  blogsearch serve --addr :8080 --watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "rebuild the index when the snapshot file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	watch := serveWatch || cfg.Server.Watch

	s, err := loadStore(cfg)
	if err != nil {
		return err
	}

	svc, release, err := buildService(ctx, cfg, s, cfg.Render.Mode)
	if err != nil {
		return err
	}
	holder := search.NewHolder(svc)

	var mu sync.Mutex
	current := release
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		current()
	}()

	if watch {
		if cfg.Store.Path == "" {
			return fmt.Errorf("--watch needs a snapshot file (store.path)")
		}
		go func() {
			err := store.Watch(ctx, cfg.Store.Path, func(next *store.Store) {
				fresh, freshRelease, err := buildService(ctx, cfg, next, cfg.Render.Mode)
				if err != nil {
					slog.Warn("reload failed, keeping previous index", "error", err)
					return
				}
				holder.Swap(fresh)

				mu.Lock()
				retired := current
				current = freshRelease
				mu.Unlock()
				time.AfterFunc(retireDelay, retired)

				slog.Info("search service swapped", "documents", next.Len())
			})
			if err != nil {
				slog.Error("snapshot watch stopped", "error", err)
			}
		}()
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, holder)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving search on %s (%d documents, %s engine)\n", cfg.Server.Addr, s.Len(), cfg.Engine)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
