package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/shackdown/kbridge/internal/domain"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
)

// --- Mocks ---

type mockRepo struct {
	createErr error
	created   *domkn.Knowledge
	getKB     domkn.Knowledge
	getErr    error
	listKBs   []domkn.Knowledge
	listErr   error
	deleteErr error
	deletedID string
}

func (m *mockRepo) Create(_ context.Context, kb domkn.Knowledge) error {
	m.created = &kb
	return m.createErr
}

func (m *mockRepo) Get(_ context.Context, _ string) (domkn.Knowledge, error) {
	return m.getKB, m.getErr
}

func (m *mockRepo) List(_ context.Context) ([]domkn.Knowledge, error) {
	return m.listKBs, m.listErr
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return m.deleteErr
}

type mockCounter struct {
	count int
	err   error
}

func (m *mockCounter) Count(_ context.Context, _ string) (int, error) {
	return m.count, m.err
}

// --- Tests ---

func TestCreate_HappyPath(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockCounter{}, 1536)

	kb, err := svc.Create(context.Background(), "docs", "Docs", "product docs", domkn.Semantic, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kb.ID() != "docs" {
		t.Errorf("expected id docs, got %s", kb.ID())
	}
	if kb.VectorDim() != 1536 {
		t.Errorf("expected vector dim 1536, got %d", kb.VectorDim())
	}
	if kb.CreatedAt() == 0 {
		t.Error("expected created_at to be set")
	}
	if repo.created == nil {
		t.Fatal("expected repo.Create to be called")
	}
}

func TestCreate_InvalidID(t *testing.T) {
	svc := New(&mockRepo{}, &mockCounter{}, 1536)

	_, err := svc.Create(context.Background(), "bad id!", "", "", domkn.Semantic, nil)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	repo := &mockRepo{createErr: domain.ErrAlreadyExists}
	svc := New(repo, &mockCounter{}, 1536)

	_, err := svc.Create(context.Background(), "docs", "", "", domkn.Semantic, nil)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGet_WithChunkCount(t *testing.T) {
	repo := &mockRepo{getKB: domkn.Reconstruct("docs", "Docs", "", domkn.Semantic, nil, 1536, 1000)}
	svc := New(repo, &mockCounter{count: 42}, 1536)

	kb, err := svc.Get(context.Background(), "docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kb.ChunkCount() != 42 {
		t.Errorf("expected chunk count 42, got %d", kb.ChunkCount())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{getErr: domain.ErrKnowledgeNotFound}
	svc := New(repo, &mockCounter{}, 1536)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrKnowledgeNotFound) {
		t.Fatalf("expected ErrKnowledgeNotFound, got %v", err)
	}
}

func TestList_WithChunkCounts(t *testing.T) {
	repo := &mockRepo{listKBs: []domkn.Knowledge{
		domkn.Reconstruct("a", "A", "", domkn.Semantic, nil, 1536, 1),
		domkn.Reconstruct("b", "B", "", domkn.Keyword, nil, 1536, 2),
	}}
	svc := New(repo, &mockCounter{count: 7}, 1536)

	bases, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bases) != 2 {
		t.Fatalf("expected 2 bases, got %d", len(bases))
	}
	for _, kb := range bases {
		if kb.ChunkCount() != 7 {
			t.Errorf("expected chunk count 7 for %s, got %d", kb.ID(), kb.ChunkCount())
		}
	}
}

func TestDelete(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockCounter{}, 1536)

	if err := svc.Delete(context.Background(), "docs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deletedID != "docs" {
		t.Errorf("expected delete of docs, got %s", repo.deletedID)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockRepo{deleteErr: domain.ErrKnowledgeNotFound}
	svc := New(repo, &mockCounter{}, 1536)

	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrKnowledgeNotFound) {
		t.Fatalf("expected ErrKnowledgeNotFound, got %v", err)
	}
}
