package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mfenderov/blogsearch/pkg/models"
)

// ErrIDMismatch is returned when a document's id is not its position.
var ErrIDMismatch = errors.New("document id does not match its position")

//go:embed documents.json
var embeddedSnapshot []byte

// Store is the immutable, ordered snapshot of site pages.
// A document's ID is its index into the store.
type Store struct {
	docs []models.Document
}

// New creates a store from docs. Titles and bodies are not validated;
// only the id-equals-position invariant is enforced.
func New(docs []models.Document) (*Store, error) {
	out := make([]models.Document, len(docs))
	for i, doc := range docs {
		if doc.ID != i {
			return nil, fmt.Errorf("%w: document at position %d has id %d", ErrIDMismatch, i, doc.ID)
		}
		out[i] = doc
	}
	return &Store{docs: out}, nil
}

// Default returns the snapshot embedded at build time.
func Default() *Store {
	s, err := Load(bytes.NewReader(embeddedSnapshot))
	if err != nil {
		panic(fmt.Sprintf("embedded snapshot is invalid: %v", err))
	}
	return s
}

// Get returns the document with the given id.
func (s *Store) Get(id int) (models.Document, bool) {
	if id < 0 || id >= len(s.docs) {
		return models.Document{}, false
	}
	return s.docs[id], true
}

// All returns a copy of the documents in store order.
func (s *Store) All() []models.Document {
	out := make([]models.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Load reads a JSON array of documents.
func Load(r io.Reader) (*Store, error) {
	var docs []models.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return New(docs)
}

// LoadFile reads a snapshot from disk. Besides plain JSON it accepts the
// generated search asset (a .js file declaring `var documents = [...]`).
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".js") {
		data, err = extractDocumentsLiteral(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return Load(bytes.NewReader(data))
}

// WriteJSON serializes the snapshot as an indented JSON array.
func (s *Store) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s.docs)
}

// WriteFile writes the snapshot to path, replacing it atomically.
func (s *Store) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := s.WriteJSON(&buf); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

const documentsVar = "var documents = "

// extractDocumentsLiteral pulls the documents array out of the generated
// script. The generator emits raw tabs and newlines inside string values,
// which are escaped here so the literal decodes as JSON.
func extractDocumentsLiteral(src []byte) ([]byte, error) {
	start := bytes.Index(src, []byte(documentsVar))
	if start < 0 {
		return nil, errors.New("documents declaration not found")
	}
	start += len(documentsVar)

	var (
		out      bytes.Buffer
		depth    int
		inString bool
		escaped  bool
	)
	for _, c := range src[start:] {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			case c == '\n':
				out.WriteString(`\n`)
				continue
			case c == '\r':
				out.WriteString(`\r`)
				continue
			case c == '\t':
				out.WriteString(`\t`)
				continue
			}
			out.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
		}
		out.WriteByte(c)
		if depth == 0 && c == ']' {
			return out.Bytes(), nil
		}
	}
	return nil, errors.New("unterminated documents array")
}
