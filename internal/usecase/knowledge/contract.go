package knowledge

import (
	"context"

	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
)

// Repository defines the storage contract for knowledge bases.
type Repository interface {
	Create(ctx context.Context, kb domkn.Knowledge) error
	Get(ctx context.Context, id string) (domkn.Knowledge, error)
	List(ctx context.Context) ([]domkn.Knowledge, error)
	Delete(ctx context.Context, id string) error
}

// ChunkCounter counts stored chunks per knowledge base.
type ChunkCounter interface {
	Count(ctx context.Context, knowledgeID string) (int, error)
}
