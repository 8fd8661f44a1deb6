package config

import (
	"fmt"
	"time"
)

// Engine names accepted by Config.Engine.
const (
	EngineBleve         = "bleve"
	EngineElasticsearch = "elasticsearch"
)

// Config holds all application configuration.
type Config struct {
	Engine        string        `mapstructure:"engine"`
	Store         Store         `mapstructure:"store"`
	Render        Render        `mapstructure:"render"`
	Server        Server        `mapstructure:"server"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Storage       Storage       `mapstructure:"storage"`
	Scraper       Scraper       `mapstructure:"scraper"`
	MCP           MCP           `mapstructure:"mcp"`
	Sources       []Source      `mapstructure:"sources"`
}

// Store locates the document snapshot. An empty path means the snapshot
// embedded in the binary.
type Store struct {
	Path string `mapstructure:"path"`
}

// Render selects how results are presented.
type Render struct {
	Mode string `mapstructure:"mode"`
}

// Server holds HTTP server configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	Watch           bool          `mapstructure:"watch"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Storage holds S3/MinIO storage configuration.
type Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Scraper holds crawl configuration.
type Scraper struct {
	Delay        time.Duration `mapstructure:"delay"`
	MaxDepth     int           `mapstructure:"max_depth"`
	FollowLinks  bool          `mapstructure:"follow_links"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	PreferSource bool          `mapstructure:"prefer_source"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Source defines a site to crawl.
type Source struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Engine: EngineBleve,
		Render: Render{
			Mode: "modal",
		},
		Server: Server{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 5 * time.Second,
		},
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "blogsearch-documents",
		},
		Storage: Storage{
			Bucket:          "blogsearch",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
		},
		Scraper: Scraper{
			Delay:       500 * time.Millisecond,
			MaxDepth:    4,
			FollowLinks: true,
			Timeout:     30 * time.Second,
			UserAgent:   "blogsearch/1.0",
		},
		MCP: MCP{
			Name:    "blogsearch",
			Version: "1.0.0",
		},
	}
}

// Validate checks the settings that every command depends on.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineBleve, EngineElasticsearch:
	default:
		return fmt.Errorf("unknown engine %q (want %q or %q)", c.Engine, EngineBleve, EngineElasticsearch)
	}
	if c.Engine == EngineElasticsearch && len(c.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("elasticsearch engine needs at least one address")
	}
	return nil
}

// SourceURLs returns the crawl URLs for the named source, or for every
// configured source when name is empty.
func (c Config) SourceURLs(name string) ([]string, error) {
	var urls []string
	for _, source := range c.Sources {
		if name != "" && source.Name != name {
			continue
		}
		if source.URL != "" {
			urls = append(urls, source.URL)
		}
	}

	if len(urls) == 0 {
		if name != "" {
			return nil, fmt.Errorf("source %q not found in config", name)
		}
		return nil, fmt.Errorf("no sources configured")
	}
	return urls, nil
}
