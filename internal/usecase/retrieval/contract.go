package retrieval

import (
	"context"

	"github.com/shackdown/kbridge/internal/domain"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
	domret "github.com/shackdown/kbridge/internal/domain/retrieval"
)

// SearchRepository defines the storage contract for retrieval queries.
type SearchRepository interface {
	SearchKNN(
		ctx context.Context, knowledgeID string,
		vector []float32, f domret.Filter, topK int,
	) ([]domret.Record, error)

	SearchBM25(
		ctx context.Context, knowledgeID string,
		query string, f domret.Filter, topK int,
	) ([]domret.Record, error)
}

// KnowledgeReader reads knowledge bases for mode and schema resolution.
type KnowledgeReader interface {
	Get(ctx context.Context, id string) (domkn.Knowledge, error)
}

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
