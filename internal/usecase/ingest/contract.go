package ingest

import (
	"context"

	"github.com/shackdown/kbridge/internal/domain"
	domchunk "github.com/shackdown/kbridge/internal/domain/chunk"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
)

// Repository defines the storage contract for chunks.
type Repository interface {
	Upsert(ctx context.Context, knowledgeID string, c *domchunk.Chunk) (bool, error)
	UpsertMulti(ctx context.Context, knowledgeID string, chunks []domchunk.Chunk) error
	Get(ctx context.Context, knowledgeID, id string) (domchunk.Chunk, error)
	Delete(ctx context.Context, knowledgeID, id string) error
}

// KnowledgeReader reads knowledge bases for schema validation.
type KnowledgeReader interface {
	Get(ctx context.Context, id string) (domkn.Knowledge, error)
}

// Embedder vectorizes chunk content.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
