package ingestion

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/mfenderov/blogsearch/internal/events"
	"github.com/mfenderov/blogsearch/internal/store"
	"github.com/mfenderov/blogsearch/pkg/models"
)

type memSource map[string][]byte

func (m memSource) GetSnapshot(_ context.Context, prefix string) ([]byte, error) {
	data, ok := m[prefix]
	if !ok {
		return nil, errors.New("no such snapshot")
	}
	return data, nil
}

type recordingBuilder struct {
	mu     sync.Mutex
	builds [][]models.Document
	err    error
}

func (b *recordingBuilder) Build(_ context.Context, docs []models.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.builds = append(b.builds, docs)
	return nil
}

func (b *recordingBuilder) Index() string { return "blogsearch-test" }

const snapshot = `[
	{"id": 0, "url": "https://blog.example.com/", "title": "Home", "body": "welcome"},
	{"id": 1, "url": "https://blog.example.com/about/", "title": "About", "body": "me"}
]`

func TestEngine_Ingest(t *testing.T) {
	builder := &recordingBuilder{}
	e := New(memSource{"snapshots/a": []byte(snapshot)}, builder)

	result, err := e.Ingest(context.Background(), "snapshots/a")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result.DocsIndexed != 2 || result.Prefix != "snapshots/a" {
		t.Errorf("result = %+v", result)
	}

	if len(builder.builds) != 1 {
		t.Fatalf("expected one build, got %d", len(builder.builds))
	}
	var ids []int
	for _, doc := range builder.builds[0] {
		ids = append(ids, doc.ID)
	}
	if !slices.Equal(ids, []int{0, 1}) {
		t.Errorf("documents built in order %v, want [0 1]", ids)
	}
}

func TestEngine_IngestRejectsInvalidSnapshot(t *testing.T) {
	builder := &recordingBuilder{}
	e := New(memSource{
		"snapshots/bad-ids": []byte(`[{"id": 3, "url": "u", "title": "t", "body": "b"}]`),
		"snapshots/garbage": []byte(`not json`),
	}, builder)

	for _, prefix := range []string{"snapshots/bad-ids", "snapshots/garbage", "snapshots/missing"} {
		if _, err := e.Ingest(context.Background(), prefix); err == nil {
			t.Errorf("Ingest(%q) should fail", prefix)
		}
	}

	_, err := e.Ingest(context.Background(), "snapshots/bad-ids")
	if !errors.Is(err, store.ErrIDMismatch) {
		t.Errorf("error = %v, want ErrIDMismatch", err)
	}
	if len(builder.builds) != 0 {
		t.Error("index should not be touched for an invalid snapshot")
	}
}

func TestEngine_IngestPropagatesBuildError(t *testing.T) {
	buildErr := errors.New("cluster unavailable")
	e := New(memSource{"p": []byte(snapshot)}, &recordingBuilder{err: buildErr})

	if _, err := e.Ingest(context.Background(), "p"); !errors.Is(err, buildErr) {
		t.Errorf("Ingest() error = %v, want %v", err, buildErr)
	}
}

func TestEngine_Run(t *testing.T) {
	builder := &recordingBuilder{}
	e := New(memSource{"ok": []byte(snapshot)}, builder)

	published := make(chan events.SnapshotPublishedEvent)
	built := e.Run(context.Background(), published)

	go func() {
		published <- events.SnapshotPublishedEvent{Prefix: "ok", DocumentCount: 2}
		published <- events.SnapshotPublishedEvent{Prefix: "missing"}
		close(published)
	}()

	var got []events.IndexBuiltEvent
	for event := range built {
		got = append(got, event)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Err != nil || got[0].DocsIndexed != 2 || got[0].Index != "blogsearch-test" {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].Err == nil {
		t.Error("second event should report the missing snapshot")
	}
}
