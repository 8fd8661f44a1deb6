package storage

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"empty endpoint", Config{Endpoint: "", Bucket: "test"}, true},
		{"empty bucket", Config{Endpoint: "localhost:9000", Bucket: ""}, true},
		{"valid config", Config{
			Endpoint:        "localhost:9000",
			Bucket:          "test",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewPrefix(t *testing.T) {
	pattern := regexp.MustCompile(`^snapshots/blog\.example\.com/\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-[0-9a-f]{8}$`)

	first, err := NewPrefix("https://blog.example.com/about/")
	if err != nil {
		t.Fatalf("NewPrefix() error = %v", err)
	}
	if !pattern.MatchString(first) {
		t.Errorf("NewPrefix() = %q, does not match %s", first, pattern)
	}

	second, err := NewPrefix("https://blog.example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("prefixes should be unique")
	}
}

func TestNewPrefix_Invalid(t *testing.T) {
	for _, u := range []string{"://bad", "/relative/path"} {
		if _, err := NewPrefix(u); err == nil {
			t.Errorf("NewPrefix(%q) should fail", u)
		}
	}
}

// TestIntegration_Snapshots runs against MinIO and skips when it is not running.
func TestIntegration_Snapshots(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		Bucket:          "blogsearch-test",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	if err := client.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	prefix, err := NewPrefix("https://test.example.com/")
	if err != nil {
		t.Fatal(err)
	}
	snapshot := []byte(`[{"id":0,"url":"https://test.example.com/","title":"Home","body":"hello"}]`)

	t.Run("PutSnapshot", func(t *testing.T) {
		if err := client.PutSnapshot(ctx, prefix, snapshot); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
	})

	t.Run("GetSnapshot", func(t *testing.T) {
		got, err := client.GetSnapshot(ctx, prefix)
		if err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if string(got) != string(snapshot) {
			t.Errorf("GetSnapshot() = %s, want %s", got, snapshot)
		}
	})

	t.Run("Metadata", func(t *testing.T) {
		meta := Metadata{
			SourceURL:     "https://test.example.com/",
			Timestamp:     "2024-12-12T10:00:00Z",
			DocumentCount: 1,
			Pages:         []string{"https://test.example.com/"},
		}
		if err := client.PutMetadata(ctx, prefix, meta); err != nil {
			t.Fatalf("PutMetadata() error = %v", err)
		}

		got, err := client.GetMetadata(ctx, prefix)
		if err != nil {
			t.Fatalf("GetMetadata() error = %v", err)
		}
		if got.SourceURL != meta.SourceURL || got.DocumentCount != 1 {
			t.Errorf("GetMetadata() = %+v", got)
		}
	})

	t.Run("ListSnapshots", func(t *testing.T) {
		prefixes, err := client.ListSnapshots(ctx, "test.example.com")
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		found := false
		for _, p := range prefixes {
			if p == prefix {
				found = true
			}
			if !strings.HasPrefix(p, "snapshots/test.example.com/") {
				t.Errorf("unexpected prefix %q", p)
			}
		}
		if !found {
			t.Errorf("ListSnapshots() = %v, missing %q", prefixes, prefix)
		}
	})
}
