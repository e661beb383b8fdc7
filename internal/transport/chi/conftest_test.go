package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/shackdown/kbridge/internal/domain"
	domchunk "github.com/shackdown/kbridge/internal/domain/chunk"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
	domret "github.com/shackdown/kbridge/internal/domain/retrieval"
	healthuc "github.com/shackdown/kbridge/internal/usecase/health"
	ingestuc "github.com/shackdown/kbridge/internal/usecase/ingest"
	knowledgeuc "github.com/shackdown/kbridge/internal/usecase/knowledge"
	retrievaluc "github.com/shackdown/kbridge/internal/usecase/retrieval"
)

type mockSearchRepo struct {
	knnFn func(ctx context.Context, knowledgeID string,
		vector []float32, f domret.Filter, topK int) ([]domret.Record, error)
	bm25Fn func(ctx context.Context, knowledgeID string,
		query string, f domret.Filter, topK int) ([]domret.Record, error)
}

func (m *mockSearchRepo) SearchKNN(
	ctx context.Context, knowledgeID string, vector []float32, f domret.Filter, topK int,
) ([]domret.Record, error) {
	if m.knnFn == nil {
		return nil, nil
	}
	return m.knnFn(ctx, knowledgeID, vector, f, topK)
}

func (m *mockSearchRepo) SearchBM25(
	ctx context.Context, knowledgeID string, query string, f domret.Filter, topK int,
) ([]domret.Record, error) {
	if m.bm25Fn == nil {
		return nil, nil
	}
	return m.bm25Fn(ctx, knowledgeID, query, f, topK)
}

type mockKnowledgeRepo struct {
	getFn    func(ctx context.Context, id string) (domkn.Knowledge, error)
	createFn func(ctx context.Context, kb domkn.Knowledge) error
	listFn   func(ctx context.Context) ([]domkn.Knowledge, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockKnowledgeRepo) Get(ctx context.Context, id string) (domkn.Knowledge, error) {
	if m.getFn == nil {
		return domkn.Knowledge{}, domain.ErrKnowledgeNotFound
	}
	return m.getFn(ctx, id)
}

func (m *mockKnowledgeRepo) Create(ctx context.Context, kb domkn.Knowledge) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, kb)
}

func (m *mockKnowledgeRepo) List(ctx context.Context) ([]domkn.Knowledge, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}

func (m *mockKnowledgeRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

type mockChunkRepo struct {
	upsertFn      func(ctx context.Context, knowledgeID string, c *domchunk.Chunk) (bool, error)
	upsertMultiFn func(ctx context.Context, knowledgeID string, chunks []domchunk.Chunk) error
	getFn         func(ctx context.Context, knowledgeID, id string) (domchunk.Chunk, error)
	deleteFn      func(ctx context.Context, knowledgeID, id string) error
}

func (m *mockChunkRepo) Upsert(ctx context.Context, knowledgeID string, c *domchunk.Chunk) (bool, error) {
	if m.upsertFn == nil {
		return true, nil
	}
	return m.upsertFn(ctx, knowledgeID, c)
}

func (m *mockChunkRepo) UpsertMulti(ctx context.Context, knowledgeID string, chunks []domchunk.Chunk) error {
	if m.upsertMultiFn == nil {
		return nil
	}
	return m.upsertMultiFn(ctx, knowledgeID, chunks)
}

func (m *mockChunkRepo) Get(ctx context.Context, knowledgeID, id string) (domchunk.Chunk, error) {
	if m.getFn == nil {
		return domchunk.Chunk{}, domain.ErrChunkNotFound
	}
	return m.getFn(ctx, knowledgeID, id)
}

func (m *mockChunkRepo) Delete(ctx context.Context, knowledgeID, id string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, knowledgeID, id)
}

type mockChunkCounter struct {
	n int
}

func (m *mockChunkCounter) Count(_ context.Context, _ string) (int, error) {
	return m.n, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type testDeps struct {
	search   *mockSearchRepo
	bases    *mockKnowledgeRepo
	chunks   *mockChunkRepo
	embedder *mockEmbedder
	db       *mockPinger
}

// newTestServer assembles a router over mocked repositories with real
// usecase services, matching the production wiring.
func newTestServer(d *testDeps, apiKeys []string) http.Handler {
	if d.search == nil {
		d.search = &mockSearchRepo{}
	}
	if d.bases == nil {
		d.bases = &mockKnowledgeRepo{}
	}
	if d.chunks == nil {
		d.chunks = &mockChunkRepo{}
	}
	if d.embedder == nil {
		d.embedder = &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	}
	if d.db == nil {
		d.db = &mockPinger{}
	}

	retrieval := retrievaluc.New(d.search, d.bases, d.embedder)
	knowledge := knowledgeuc.New(d.bases, &mockChunkCounter{}, 3)
	ingest := ingestuc.New(d.chunks, d.bases, d.embedder)
	health := healthuc.New(d.db, nil)

	return NewServer(retrieval, knowledge, ingest, health, zap.NewNop()).Router(apiKeys)
}

// semanticKB is a 3-dimensional knowledge base with the given metadata fields.
func semanticKB(id string, mode domkn.Mode, fields ...domkn.Field) domkn.Knowledge {
	return domkn.Reconstruct(id, id, "", mode, fields, 3, 1700000000000)
}

func basesWith(kb domkn.Knowledge) *mockKnowledgeRepo {
	return &mockKnowledgeRepo{
		getFn: func(_ context.Context, id string) (domkn.Knowledge, error) {
			if id != kb.ID() {
				return domkn.Knowledge{}, domain.ErrKnowledgeNotFound
			}
			return kb, nil
		},
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
