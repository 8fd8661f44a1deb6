package events

import "time"

// SnapshotPublishedEvent is sent when a crawl has written its snapshot to S3.
type SnapshotPublishedEvent struct {
	Bucket        string    // S3 bucket name
	Prefix        string    // e.g. "snapshots/blog.example.com/2024-12-12T10-00-00-1a2b3c4d"
	SourceURL     string    // site that was crawled
	DocumentCount int       // documents in the snapshot
	Timestamp     time.Time // when the snapshot was published
}

// IndexBuiltEvent is sent when a snapshot has been indexed.
type IndexBuiltEvent struct {
	Prefix      string        // snapshot that was indexed
	Index       string        // Elasticsearch index name
	DocsIndexed int           // documents submitted to the engine
	Duration    time.Duration // how long the build took
	Err         error         // nil on success
}
