package models

import "time"

// Page is a fetched page before text extraction.
type Page struct {
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	FetchedAt   time.Time `json:"fetched_at"`
}
