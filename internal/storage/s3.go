package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	snapshotsRoot  = "snapshots"
	snapshotObject = "documents.json"
	metadataObject = "metadata.json"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client stores published document snapshots in an S3 bucket.
// Each snapshot lives under its own prefix:
//
//	snapshots/{host}/{timestamp}-{id}/documents.json
//	snapshots/{host}/{timestamp}-{id}/metadata.json
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{minioClient: minioClient, bucket: config.Bucket}, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Metadata describes a published snapshot.
type Metadata struct {
	SourceURL     string   `json:"source_url"`
	Timestamp     string   `json:"timestamp"`
	DocumentCount int      `json:"document_count"`
	Pages         []string `json:"pages"` // document URLs in id order
}

// NewPrefix returns a fresh snapshot prefix for siteURL.
func NewPrefix(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("site URL %q has no host", siteURL)
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	id := uuid.NewString()[:8]
	return path.Join(snapshotsRoot, u.Host, timestamp+"-"+id), nil
}

// PutSnapshot writes the snapshot JSON under prefix.
func (c *Client) PutSnapshot(ctx context.Context, prefix string, data []byte) error {
	if err := c.put(ctx, path.Join(prefix, snapshotObject), data); err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}

// GetSnapshot reads the snapshot JSON stored under prefix.
func (c *Client) GetSnapshot(ctx context.Context, prefix string) ([]byte, error) {
	data, err := c.get(ctx, path.Join(prefix, snapshotObject))
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return data, nil
}

// PutMetadata writes the snapshot metadata under prefix.
func (c *Client) PutMetadata(ctx context.Context, prefix string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := c.put(ctx, path.Join(prefix, metadataObject), data); err != nil {
		return fmt.Errorf("failed to put metadata: %w", err)
	}
	return nil
}

// GetMetadata reads the snapshot metadata stored under prefix.
func (c *Client) GetMetadata(ctx context.Context, prefix string) (*Metadata, error) {
	data, err := c.get(ctx, path.Join(prefix, metadataObject))
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &meta, nil
}

// ListSnapshots returns the snapshot prefixes published for host, oldest first.
func (c *Client) ListSnapshots(ctx context.Context, host string) ([]string, error) {
	root := path.Join(snapshotsRoot, host) + "/"
	var prefixes []string

	for object := range c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    root,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if path.Base(object.Key) == snapshotObject {
			prefixes = append(prefixes, path.Dir(object.Key))
		}
	}

	sort.Strings(prefixes)
	return prefixes, nil
}

func (c *Client) put(ctx context.Context, objectName string, data []byte) error {
	_, err := c.minioClient.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (c *Client) get(ctx context.Context, objectName string) ([]byte, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	return io.ReadAll(object)
}
