// Package ingest handles chunk write operations with automatic vectorization.
package ingest

import (
	"context"
	"fmt"

	"github.com/shackdown/kbridge/internal/domain"
	domchunk "github.com/shackdown/kbridge/internal/domain/chunk"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
)

// DefaultMaxBatchSize bounds the number of chunks per batch upsert.
const DefaultMaxBatchSize = 100

// Service handles chunk ingestion: schema validation, embedding, storage.
type Service struct {
	repo         Repository
	bases        KnowledgeReader
	embedder     Embedder
	maxBatchSize int
}

// New creates an ingest service.
func New(repo Repository, bases KnowledgeReader, embedder Embedder) *Service {
	return &Service{repo: repo, bases: bases, embedder: embedder, maxBatchSize: DefaultMaxBatchSize}
}

// WithMaxBatchSize configures the batch upsert limit.
func (s *Service) WithMaxBatchSize(n int) *Service {
	if n > 0 {
		s.maxBatchSize = n
	}
	return s
}

// Upsert creates or updates a chunk with automatic vectorization.
// Returns true if the chunk was created, false if updated.
func (s *Service) Upsert(ctx context.Context, knowledgeID string, c *domchunk.Chunk) (bool, error) {
	kb, err := s.bases.Get(ctx, knowledgeID)
	if err != nil {
		return false, fmt.Errorf("get knowledge base: %w", err)
	}

	if err := validateChunkFields(c, &kb); err != nil {
		return false, err
	}

	result, err := s.embedder.Embed(ctx, c.Content())
	if err != nil {
		return false, fmt.Errorf("vectorize chunk: %w", err)
	}

	if kb.VectorDim() > 0 && len(result.Embedding) != kb.VectorDim() {
		return false, fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(result.Embedding), kb.VectorDim(), domain.ErrVectorDimMismatch,
		)
	}

	c.SetVector(result.Embedding)
	created, err := s.repo.Upsert(ctx, knowledgeID, c)
	if err != nil {
		return false, fmt.Errorf("upsert chunk: %w", err)
	}

	return created, nil
}

// BatchResult reports the outcome of one chunk in a batch upsert.
type BatchResult struct {
	ID  string
	Err error
}

// BatchUpsert embeds all chunks in one provider call and stores them in one
// pipelined write. Schema violations are reported per chunk; valid chunks
// still go through.
func (s *Service) BatchUpsert(
	ctx context.Context, knowledgeID string, chunks []domchunk.Chunk,
) ([]BatchResult, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if len(chunks) > s.maxBatchSize {
		return nil, fmt.Errorf(
			"batch too large: %d chunks (max %d): %w",
			len(chunks), s.maxBatchSize, domain.ErrInvalidArgument,
		)
	}

	kb, err := s.bases.Get(ctx, knowledgeID)
	if err != nil {
		return nil, fmt.Errorf("get knowledge base: %w", err)
	}

	results := make([]BatchResult, len(chunks))
	var validIdx []int
	var texts []string

	for i := range chunks {
		results[i].ID = chunks[i].ID()
		if err := validateChunkFields(&chunks[i], &kb); err != nil {
			results[i].Err = err
			continue
		}
		validIdx = append(validIdx, i)
		texts = append(texts, chunks[i].Content())
	}

	if len(texts) == 0 {
		return results, nil
	}

	embRes, err := s.batchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("vectorize batch: %w", err)
	}
	if len(embRes.Embeddings) != len(texts) {
		return nil, fmt.Errorf(
			"batch embed returned %d vectors for %d chunks", len(embRes.Embeddings), len(texts))
	}

	toStore := make([]domchunk.Chunk, 0, len(validIdx))
	for j, i := range validIdx {
		vec := embRes.Embeddings[j]
		if kb.VectorDim() > 0 && len(vec) != kb.VectorDim() {
			results[i].Err = fmt.Errorf(
				"vector dimension mismatch: got %d, want %d: %w",
				len(vec), kb.VectorDim(), domain.ErrVectorDimMismatch,
			)
			continue
		}
		chunks[i].SetVector(vec)
		toStore = append(toStore, chunks[i])
	}

	if len(toStore) > 0 {
		if err := s.repo.UpsertMulti(ctx, knowledgeID, toStore); err != nil {
			return nil, fmt.Errorf("store batch: %w", err)
		}
	}

	return results, nil
}

func (s *Service) batchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := s.embedder.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, s.embedder, texts)
}

// Get retrieves a chunk by knowledge base and ID.
func (s *Service) Get(ctx context.Context, knowledgeID, id string) (domchunk.Chunk, error) {
	if _, err := s.bases.Get(ctx, knowledgeID); err != nil {
		return domchunk.Chunk{}, fmt.Errorf("get knowledge base: %w", err)
	}

	c, err := s.repo.Get(ctx, knowledgeID, id)
	if err != nil {
		return domchunk.Chunk{}, fmt.Errorf("get chunk: %w", err)
	}
	return c, nil
}

// Delete removes a chunk.
func (s *Service) Delete(ctx context.Context, knowledgeID, id string) error {
	if _, err := s.bases.Get(ctx, knowledgeID); err != nil {
		return fmt.Errorf("get knowledge base: %w", err)
	}

	if err := s.repo.Delete(ctx, knowledgeID, id); err != nil {
		return fmt.Errorf("delete chunk: %w", err)
	}
	return nil
}

// validateChunkFields checks tag and numeric metadata against the knowledge
// base schema.
func validateChunkFields(c *domchunk.Chunk, kb *domkn.Knowledge) error {
	fieldTypes := make(map[string]domkn.FieldType)
	for _, f := range kb.Fields() {
		fieldTypes[f.Name()] = f.FieldType()
	}

	for k := range c.Tags() {
		ft, ok := fieldTypes[k]
		if !ok {
			return fmt.Errorf("unknown field %q (not in knowledge base schema): %w", k, domain.ErrInvalidArgument)
		}
		if ft != domkn.Tag {
			return fmt.Errorf("field %q is %s, not tag: %w", k, ft, domain.ErrInvalidArgument)
		}
	}

	for k := range c.Numerics() {
		ft, ok := fieldTypes[k]
		if !ok {
			return fmt.Errorf("unknown field %q (not in knowledge base schema): %w", k, domain.ErrInvalidArgument)
		}
		if ft != domkn.Numeric {
			return fmt.Errorf("field %q is %s, not numeric: %w", k, ft, domain.ErrInvalidArgument)
		}
	}

	return nil
}
