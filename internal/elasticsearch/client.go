package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/mfenderov/blogsearch/internal/query"
	"github.com/mfenderov/blogsearch/pkg/models"
)

// defaultResultWindow is Elasticsearch's default index.max_result_window.
const defaultResultWindow = 10000

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Client is a remote full-text engine holding one snapshot in one index.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{es: es, index: config.Index}, nil
}

// Index returns the index name.
func (c *Client) Index() string {
	return c.index
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping mirrors the in-memory index: title and body are the
// searchable fields, id and url are stored for display.
var indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "integer" },
			"url": { "type": "keyword", "index": false },
			"title": { "type": "text", "analyzer": "english" },
			"body": { "type": "text", "analyzer": "english" }
		}
	}
}`

// Build replaces the index with one holding docs. Documents are indexed in
// order, each exactly once, and the index is refreshed before returning.
func (c *Client) Build(ctx context.Context, docs []models.Document) error {
	if err := c.DeleteIndex(ctx); err != nil {
		return err
	}
	if err := c.CreateIndex(ctx); err != nil {
		return err
	}
	if len(docs) > defaultResultWindow {
		if err := c.setResultWindow(ctx, len(docs)); err != nil {
			return err
		}
	}

	for _, doc := range docs {
		if err := c.IndexDocument(ctx, doc); err != nil {
			return err
		}
	}

	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}

	slog.Debug("elasticsearch index built", "index", c.index, "documents", len(docs))
	return nil
}

// CreateIndex creates the index with the document mapping if it is missing.
func (c *Client) CreateIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}

// setResultWindow lets one search page through n hits.
func (c *Client) setResultWindow(ctx context.Context, n int) error {
	body := fmt.Sprintf(`{"index": {"max_result_window": %d}}`, n)
	res, err := c.es.Indices.PutSettings(
		strings.NewReader(body),
		c.es.Indices.PutSettings.WithContext(ctx),
		c.es.Indices.PutSettings.WithIndex(c.index),
	)
	if err != nil {
		return fmt.Errorf("failed to update index settings: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error updating index settings: %s", res.String())
	}
	return nil
}

// DeleteIndex removes the index. A missing index is not an error.
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error deleting index: %s", res.String())
	}
	return nil
}

// IndexDocument indexes a single document under its reference key.
func (c *Client) IndexDocument(ctx context.Context, doc models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(doc.Key()),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document %d (status %d): %s", doc.ID, res.StatusCode, res.String())
	}
	return nil
}

// Refresh makes indexed documents visible to search.
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID    string  `json:"_id"`
			Score float64 `json:"_score"`
		} `json:"hits"`
	} `json:"hits"`
}

// searchBody builds a query_string search over title and body, ranked by
// score with ties broken by document id.
func searchBody(term string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"query_string": map[string]any{
				"query":  term,
				"fields": []string{"title", "body"},
			},
		},
		"sort": []any{
			map[string]any{"_score": "desc"},
			map[string]any{"id": "asc"},
		},
		"track_scores": true,
		"_source":      false,
		"size":         size,
	}
}

// Count returns the number of documents in the index.
func (c *Client) Count(ctx context.Context) (int, error) {
	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(c.index),
	)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var cr struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return cr.Count, nil
}

// Search runs term against the index and returns every match, best first.
// The request is sized from the document count so no hit is cut off.
// Syntax errors reported by Elasticsearch wrap query.ErrInvalidQuery.
// A whitespace-only term matches nothing.
func (c *Client) Search(ctx context.Context, term string) ([]models.Ref, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}

	size, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}

	data, err := json.Marshal(searchBody(term, size))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", query.ErrInvalidQuery, res.String())
		}
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	refs := make([]models.Ref, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		ref, err := models.ParseRef(hit.ID, hit.Score)
		if err != nil {
			return nil, fmt.Errorf("engine returned %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
