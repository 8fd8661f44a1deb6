package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/blogsearch/internal/mcp"
	"github.com/mfenderov/blogsearch/internal/search"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the MCP server for blog search.

The server communicates via stdio and provides two tools:
  - search_documents: Search the blog by query
  - get_document: Get a page's full text by document ID

Example:
  blogsearch mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := loadStore(cfg)
	if err != nil {
		return err
	}

	svc, release, err := buildService(ctx, cfg, s, cfg.Render.Mode)
	if err != nil {
		return err
	}
	defer release()

	server, err := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, search.NewHolder(svc))
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
