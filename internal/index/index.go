package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/mfenderov/blogsearch/internal/query"
	"github.com/mfenderov/blogsearch/pkg/models"
)

// Field names indexed for every document. The document id is the
// bleve document ID and is what a search hit refers back to.
const (
	FieldTitle = "title"
	FieldBody  = "body"
)

// searchFields are the fields a clause without a field prefix is matched
// against. Each is scored on its own.
var searchFields = []string{FieldTitle, FieldBody}

// Index is an in-memory full-text index over a document snapshot.
// It is built once and never updated; a new snapshot needs a new Index.
type Index struct {
	idx  bleve.Index
	size int
}

// newMapping declares title and body as the searchable text fields.
func newMapping() *mapping.IndexMappingImpl {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName
	text.Store = false
	text.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldTitle, text)
	doc.AddFieldMappingsAt(FieldBody, text)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = en.AnalyzerName
	return m
}

// fields is the shape submitted to bleve for one document.
func fields(doc models.Document) map[string]any {
	return map[string]any{
		FieldTitle: doc.Title,
		FieldBody:  doc.Body,
	}
}

// Build indexes docs in order, each exactly once.
// Errors from the engine are returned as-is.
func Build(docs []models.Document) (*Index, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, err
	}

	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.Key(), fields(doc)); err != nil {
			_ = idx.Close()
			return nil, err
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, err
	}

	slog.Debug("index built", "documents", len(docs))

	return &Index{idx: idx, size: len(docs)}, nil
}

// Search runs term as a query-string query (field scoping, +/- and
// wildcards are supported) and returns every match, best first.
// Unscoped clauses match title or body. Ties are broken by document key.
// Syntax errors wrap query.ErrInvalidQuery. A whitespace-only term
// matches nothing.
func (i *Index) Search(ctx context.Context, term string) ([]models.Ref, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}
	parsed, err := bleve.NewQueryStringQuery(term).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", query.ErrInvalidQuery, err)
	}
	if i.size == 0 {
		return nil, nil
	}
	q := scope(parsed)

	req := bleve.NewSearchRequestOptions(q, i.size, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	refs := make([]models.Ref, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ref, err := models.ParseRef(hit.ID, hit.Score)
		if err != nil {
			return nil, fmt.Errorf("engine returned %w", err)
		}
		refs = append(refs, ref)
	}

	slog.Debug("index search", "term", term, "hits", len(refs))
	return refs, nil
}

// scope rewrites every clause without a field into a disjunction over
// searchFields. Compound queries are rewritten in place so the
// query-string semantics of +, - and plain clauses are kept.
func scope(q blevequery.Query) blevequery.Query {
	switch q := q.(type) {
	case *blevequery.BooleanQuery:
		q.Must = scope(q.Must)
		q.Should = scope(q.Should)
		q.MustNot = scope(q.MustNot)
		return q
	case *blevequery.ConjunctionQuery:
		for n, c := range q.Conjuncts {
			q.Conjuncts[n] = scope(c)
		}
		return q
	case *blevequery.DisjunctionQuery:
		for n, c := range q.Disjuncts {
			q.Disjuncts[n] = scope(c)
		}
		return q
	case *blevequery.MatchQuery:
		if q.FieldVal != "" {
			return q
		}
		return perField(func(field string) blevequery.Query {
			c := *q
			c.SetField(field)
			return &c
		})
	case *blevequery.MatchPhraseQuery:
		if q.FieldVal != "" {
			return q
		}
		return perField(func(field string) blevequery.Query {
			c := *q
			c.SetField(field)
			return &c
		})
	case *blevequery.WildcardQuery:
		if q.FieldVal != "" {
			return q
		}
		return perField(func(field string) blevequery.Query {
			c := *q
			c.SetField(field)
			return &c
		})
	case *blevequery.RegexpQuery:
		if q.FieldVal != "" {
			return q
		}
		return perField(func(field string) blevequery.Query {
			c := *q
			c.SetField(field)
			return &c
		})
	default:
		return q
	}
}

func perField(clause func(field string) blevequery.Query) blevequery.Query {
	clauses := make([]blevequery.Query, len(searchFields))
	for n, field := range searchFields {
		clauses[n] = clause(field)
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

// Len returns the number of indexed documents.
func (i *Index) Len() int {
	return i.size
}

// Close releases the index.
func (i *Index) Close() error {
	return i.idx.Close()
}
