// Package chunk persists content chunks as Redis hashes under the
// per-knowledge-base key prefix, so the FT index picks them up.
package chunk

import (
	"context"
	"fmt"

	"github.com/shackdown/kbridge/internal/db"
	"github.com/shackdown/kbridge/internal/domain"
	domchunk "github.com/shackdown/kbridge/internal/domain/chunk"
)

// store is the consumer interface for chunks (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements usecase ingest.Repository.
type Repo struct {
	store store
}

// New creates a chunk repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert creates or updates a chunk. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, knowledgeID string, c *domchunk.Chunk) (bool, error) {
	key := chunkKey(knowledgeID, c.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(c)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// UpsertMulti stores multiple chunks in one pipelined round-trip.
func (r *Repo) UpsertMulti(ctx context.Context, knowledgeID string, chunks []domchunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(chunks))
	for i := range chunks {
		items[i] = db.HashSetItem{
			Key:    chunkKey(knowledgeID, chunks[i].ID()),
			Fields: buildHashFields(&chunks[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi %s: %w", knowledgeID, err)
	}
	return nil
}

// Get returns a chunk by ID.
func (r *Repo) Get(ctx context.Context, knowledgeID, id string) (domchunk.Chunk, error) {
	key := chunkKey(knowledgeID, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domchunk.Chunk{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domchunk.Chunk{}, domain.ErrChunkNotFound
	}
	return parseHashFields(id, m), nil
}

// Delete removes a chunk.
func (r *Repo) Delete(ctx context.Context, knowledgeID, id string) error {
	key := chunkKey(knowledgeID, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrChunkNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Count returns the number of chunks in a knowledge base.
func (r *Repo) Count(ctx context.Context, knowledgeID string) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(knowledgeID), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", knowledgeID, err)
	}
	return n, nil
}

func chunkKey(knowledgeID, id string) string {
	return fmt.Sprintf("%s%s:%s", domain.KeyPrefix, knowledgeID, id)
}

func indexName(knowledgeID string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, knowledgeID)
}
