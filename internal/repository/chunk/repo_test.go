package chunk

import (
	"context"
	"errors"
	"testing"

	"github.com/shackdown/kbridge/internal/db"
	"github.com/shackdown/kbridge/internal/domain"
	domchunk "github.com/shackdown/kbridge/internal/domain/chunk"
)

// --- Upsert ---

func TestUpsert_Create(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	c := testChunk(t)

	ms.existsFn = func(_ context.Context, key string) (bool, error) {
		if key != "kbridge:docs:c1" {
			t.Errorf("unexpected key: %s", key)
		}
		return false, nil
	}
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "kbridge:docs:c1" {
			t.Errorf("unexpected key: %s", key)
		}
		if fields["__content"] != "how to rotate api keys" {
			t.Errorf("unexpected content field: %q", fields["__content"])
		}
		if fields["category"] != "faq" || fields["year"] != "2024" {
			t.Errorf("unexpected metadata fields: %v", fields)
		}
		return nil
	}

	created, err := repo.Upsert(ctx, "docs", &c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for new chunk")
	}
}

func TestUpsert_Update(t *testing.T) {
	repo, ms := newTestRepo(t)
	c := testChunk(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	created, err := repo.Upsert(context.Background(), "docs", &c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("expected created=false for existing chunk")
	}
}

func TestUpsert_HSetError(t *testing.T) {
	repo, ms := newTestRepo(t)
	c := testChunk(t)

	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error {
		return errors.New("connection lost")
	}

	if _, err := repo.Upsert(context.Background(), "docs", &c); err == nil {
		t.Fatal("expected error on HSET failure")
	}
}

func TestUpsertMulti_Pipelines(t *testing.T) {
	repo, ms := newTestRepo(t)
	c := testChunk(t)

	var items []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, got []db.HashSetItem) error {
		items = got
		return nil
	}

	err := repo.UpsertMulti(context.Background(), "docs", []domchunk.Chunk{c, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 pipelined items, got %d", len(items))
	}
	if items[0].Key != "kbridge:docs:c1" {
		t.Errorf("unexpected key: %s", items[0].Key)
	}
}

// --- Get / Delete / Count ---

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)
	c := testChunk(t)

	stored := buildHashFields(&c)
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "kbridge:docs:c1" {
			t.Errorf("unexpected key: %s", key)
		}
		return stored, nil
	}

	got, err := repo.Get(context.Background(), "docs", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content() != c.Content() || got.Title() != c.Title() {
		t.Errorf("unexpected chunk: %q %q", got.Content(), got.Title())
	}
	if got.Tags()["category"] != "faq" {
		t.Errorf("tags: %v", got.Tags())
	}
	if got.Numerics()["year"] != 2024 {
		t.Errorf("numerics: %v", got.Numerics())
	}
	if len(got.Vector()) != len(c.Vector()) || got.Vector()[1] != c.Vector()[1] {
		t.Errorf("vector did not survive the round-trip: %v", got.Vector())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "docs", "missing")
	if !errors.Is(err, domain.ErrChunkNotFound) {
		t.Fatalf("expected ErrChunkNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }

	err := repo.Delete(context.Background(), "docs", "missing")
	if !errors.Is(err, domain.ErrChunkNotFound) {
		t.Fatalf("expected ErrChunkNotFound, got %v", err)
	}
}

func TestDelete_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	var delKey string
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.delFn = func(_ context.Context, key string) error {
		delKey = key
		return nil
	}

	if err := repo.Delete(context.Background(), "docs", "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delKey != "kbridge:docs:c1" {
		t.Errorf("unexpected DEL key: %s", delKey)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchCountFn = func(_ context.Context, index, query string) (int, error) {
		if index != "kbridge:docs:idx" || query != "*" {
			t.Errorf("unexpected count query: %s %s", index, query)
		}
		return 7, nil
	}

	n, err := repo.Count(context.Background(), "docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
}

// --- Vector encoding ---

func TestVectorBytesRoundTrip(t *testing.T) {
	v := []float32{0.5, -1.25, 3.75}
	got := bytesToVector(vectorToBytes(v))
	if len(got) != len(v) {
		t.Fatalf("expected %d floats, got %d", len(v), len(got))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("index %d: got %f, want %f", i, got[i], v[i])
		}
	}
}

func TestBytesToVector_InvalidLength(t *testing.T) {
	if v := bytesToVector("abc"); v != nil {
		t.Errorf("expected nil for truncated data, got %v", v)
	}
}
