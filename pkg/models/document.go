package models

import (
	"fmt"
	"strconv"
)

// Document is one page of the site snapshot.
// ID is the document's position in the store and doubles as the
// reference key handed to the search engine.
type Document struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Key returns the engine-side reference for the document.
func (d Document) Key() string {
	return DocumentKey(d.ID)
}

// Ref is a single ranked search hit. It lives for one query/render cycle.
type Ref struct {
	ID    int     `json:"ref"`
	Score float64 `json:"score"`
}

// DocumentKey formats a document ID as an engine reference.
func DocumentKey(id int) string {
	return strconv.Itoa(id)
}

// ParseRef converts an engine reference back into a Ref.
func ParseRef(key string, score float64) (Ref, error) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid document reference %q: %w", key, err)
	}
	if id < 0 {
		return Ref{}, fmt.Errorf("invalid document reference %q: negative id", key)
	}
	return Ref{ID: id, Score: score}, nil
}
