package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/blogsearch/internal/render"
	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchFormat string
	searchMode   string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the blog snapshot",
	Long: `Search the blog snapshot from the command line.

The query uses the engine's query syntax: field scoping (title:go),
required and excluded terms (+gorm -nil) and wildcards (point*).

Examples:
  # Basic search
  blogsearch search "interfaces"

  # JSON output for scripting
  blogsearch search "GORM" --format json

  # The HTML fragment the search page would show
  blogsearch search "Go" --format html --mode modal`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results (text and json)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text, json or html")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "Render mode for html output: inline or modal (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	term := args[0]
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	mode := cfg.Render.Mode
	if searchMode != "" {
		mode = searchMode
	}

	s, err := loadStore(cfg)
	if err != nil {
		return err
	}

	svc, release, err := buildService(ctx, cfg, s, mode)
	if err != nil {
		return err
	}
	defer release()

	out := cmd.OutOrStdout()

	switch searchFormat {
	case "html":
		sess := svc.NewSession()
		if err := sess.Search(ctx, term); err != nil {
			return err
		}
		fmt.Fprintln(out, sess.Page().Content())
		return nil

	case "json", "text":
		results, err := svc.Results(ctx, term)
		if err != nil {
			return err
		}
		if len(results) > searchLimit {
			results = results[:searchLimit]
		}
		if results == nil {
			results = []render.Result{}
		}

		if searchFormat == "json" {
			output, err := json.MarshalIndent(map[string]any{"term": term, "results": results}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(output))
			return nil
		}

		if len(results) == 0 {
			fmt.Fprintln(out, render.NoResultsInline)
			return nil
		}
		fmt.Fprintf(out, "Found %d results:\n\n", len(results))
		for i, r := range results {
			fmt.Fprintf(out, "─── Result %d (score %.3f) ───\n", i+1, r.Score)
			fmt.Fprintf(out, "Title:   %s\n", r.Title)
			fmt.Fprintf(out, "URL:     %s\n", r.URL)
			fmt.Fprintf(out, "Snippet: %s\n\n", r.Snippet)
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (want text, json or html)", searchFormat)
	}
}
