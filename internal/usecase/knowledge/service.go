// Package knowledge handles knowledge base lifecycle operations.
package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/shackdown/kbridge/internal/domain"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
)

// Service handles knowledge base CRUD operations.
type Service struct {
	repo      Repository
	chunks    ChunkCounter
	vectorDim int
	now       func() time.Time
}

// New creates a knowledge base service.
func New(repo Repository, chunks ChunkCounter, vectorDim int) *Service {
	return &Service{repo: repo, chunks: chunks, vectorDim: vectorDim, now: time.Now}
}

// Create validates and stores a new knowledge base.
func (s *Service) Create(
	ctx context.Context, id, name, description string, mode domkn.Mode, fields []domkn.Field,
) (domkn.Knowledge, error) {
	kb, err := domkn.New(id, name, description, mode, fields, s.vectorDim, s.now().UnixMilli())
	if err != nil {
		return domkn.Knowledge{}, fmt.Errorf("validate knowledge base: %w: %w", domain.ErrInvalidArgument, err)
	}

	if err := s.repo.Create(ctx, kb); err != nil {
		return domkn.Knowledge{}, fmt.Errorf("create knowledge base: %w", err)
	}

	return kb, nil
}

// Get retrieves a knowledge base by id, with its chunk count.
func (s *Service) Get(ctx context.Context, id string) (domkn.Knowledge, error) {
	kb, err := s.repo.Get(ctx, id)
	if err != nil {
		return domkn.Knowledge{}, fmt.Errorf("get knowledge base: %w", err)
	}

	n, err := s.chunks.Count(ctx, id)
	if err != nil {
		return domkn.Knowledge{}, fmt.Errorf("count chunks: %w", err)
	}

	return kb.WithChunkCount(n), nil
}

// List returns all knowledge bases with chunk counts.
func (s *Service) List(ctx context.Context) ([]domkn.Knowledge, error) {
	bases, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}

	for i := range bases {
		n, err := s.chunks.Count(ctx, bases[i].ID())
		if err != nil {
			return nil, fmt.Errorf("count chunks for %s: %w", bases[i].ID(), err)
		}
		bases[i] = bases[i].WithChunkCount(n)
	}

	return bases, nil
}

// Delete removes a knowledge base with its index and chunks.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete knowledge base: %w", err)
	}
	return nil
}
