package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mfenderov/blogsearch/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "blogsearch",
	Short: "blogsearch: full-text search for a static blog",
	Long: `blogsearch indexes a snapshot of a blog's pages and answers free-text
queries with ranked results rendered as an inline list or a modal dialog.

Commands:
  crawl   Crawl a site into a document snapshot
  index   Build the Elasticsearch index from a published snapshot
  search  Search the snapshot from the command line
  serve   Serve the search page and JSON API
  mcp     Start the MCP server for search tools`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/blogsearch")
		viper.AddConfigPath(".")
	}

	// BLOGSEARCH_STORE_PATH -> store.path
	viper.SetEnvPrefix("BLOGSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Nested keys are only seen by Unmarshal once bound.
	viper.BindEnv("engine", "BLOGSEARCH_ENGINE")
	viper.BindEnv("store.path", "BLOGSEARCH_STORE_PATH")
	viper.BindEnv("render.mode", "BLOGSEARCH_RENDER_MODE")
	viper.BindEnv("server.addr", "BLOGSEARCH_SERVER_ADDR")
	viper.BindEnv("server.watch", "BLOGSEARCH_SERVER_WATCH")
	viper.BindEnv("elasticsearch.index", "BLOGSEARCH_ELASTICSEARCH_INDEX")
	viper.BindEnv("elasticsearch.username", "BLOGSEARCH_ELASTICSEARCH_USERNAME")
	viper.BindEnv("elasticsearch.password", "BLOGSEARCH_ELASTICSEARCH_PASSWORD")
	viper.BindEnv("storage.endpoint", "BLOGSEARCH_STORAGE_ENDPOINT")
	viper.BindEnv("storage.bucket", "BLOGSEARCH_STORAGE_BUCKET")
	viper.BindEnv("storage.access_key_id", "BLOGSEARCH_STORAGE_ACCESS_KEY_ID")
	viper.BindEnv("storage.secret_access_key", "BLOGSEARCH_STORAGE_SECRET_ACCESS_KEY")
	viper.BindEnv("scraper.delay", "BLOGSEARCH_SCRAPER_DELAY")
	viper.BindEnv("scraper.max_depth", "BLOGSEARCH_SCRAPER_MAX_DEPTH")
	viper.BindEnv("mcp.name", "BLOGSEARCH_MCP_NAME")
	viper.BindEnv("mcp.version", "BLOGSEARCH_MCP_VERSION")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Addresses may come from the environment as a comma-separated list.
	if addrs := os.Getenv("BLOGSEARCH_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}
