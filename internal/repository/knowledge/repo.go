// Package knowledge persists knowledge base metadata as Redis hashes and
// manages the per-base search index.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shackdown/kbridge/internal/db"
	"github.com/shackdown/kbridge/internal/domain"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
)

// store is the consumer interface for knowledge bases (ISP).
//
//nolint:interfacebloat // knowledge repo needs hash + index management operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase knowledge.Repository.
type Repo struct {
	store            store
	defaultVectorDim int
	hnsw             HNSWConfig
}

// New creates a knowledge base repository.
func New(s store, defaultVectorDim int) *Repo {
	return &Repo{store: s, defaultVectorDim: defaultVectorDim, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Create stores a knowledge base: HSET metadata then FT.CREATE index.
// On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, kb domkn.Knowledge) error {
	id := kb.ID()

	metaKey := metaKey(id)
	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	// Prepare index definition and hash data before writes
	indexDef, err := buildIndex(id, kb.Fields(), kb.VectorDim(), r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	hashData, err := knowledgeToHash(kb)
	if err != nil {
		return err
	}

	// Step 1: HSET metadata
	if err := r.store.HSet(ctx, metaKey, hashData); err != nil {
		return fmt.Errorf("hset knowledge %s: %w", id, err)
	}

	// FT.CREATE, rollback HSET on error
	if err := r.store.CreateIndex(ctx, indexDef); err != nil {
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// Get retrieves a knowledge base by id.
func (r *Repo) Get(ctx context.Context, id string) (domkn.Knowledge, error) {
	m, err := r.store.HGetAll(ctx, metaKey(id))
	if err != nil {
		return domkn.Knowledge{}, fmt.Errorf("hgetall knowledge %s: %w", id, err)
	}
	if len(m) == 0 {
		return domkn.Knowledge{}, domain.ErrKnowledgeNotFound
	}

	return knowledgeFromHash(m, r.defaultVectorDim)
}

// List returns all knowledge bases sorted by CreatedAt.
func (r *Repo) List(ctx context.Context) ([]domkn.Knowledge, error) {
	keys, err := r.store.Scan(ctx, metaKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan knowledge bases: %w", err)
	}
	if len(keys) == 0 {
		return []domkn.Knowledge{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi knowledge bases: %w", err)
	}

	bases := make([]domkn.Knowledge, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		kb, err := knowledgeFromHash(m, r.defaultVectorDim)
		if err != nil {
			return nil, fmt.Errorf("parse knowledge %s: %w", keys[i], err)
		}
		bases = append(bases, kb)
	}

	sort.Slice(bases, func(i, j int) bool {
		return bases[i].CreatedAt() < bases[j].CreatedAt()
	})

	return bases, nil
}

// Delete removes a knowledge base: backup metadata, DEL hash, FT.DROPINDEX
// (rollback HSET on error), then purge the chunk keys.
func (r *Repo) Delete(ctx context.Context, id string) error {
	metaKey := metaKey(id)

	// Backup metadata
	metaBackup, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("hgetall knowledge %s: %w", id, err)
	}
	if len(metaBackup) == 0 {
		return domain.ErrKnowledgeNotFound
	}

	idxName := indexName(id)
	idxExists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}

	// Step 1: DEL metadata
	if err := r.store.Del(ctx, metaKey); err != nil {
		return fmt.Errorf("del knowledge %s: %w", id, err)
	}

	// FT.DROPINDEX, rollback HSET on error
	if idxExists {
		if err := r.store.DropIndex(ctx, idxName); err != nil {
			cleanupErr := r.store.HSet(ctx, metaKey, metaBackup)
			return errors.Join(err, cleanupErr)
		}
	}

	// Purge chunk hashes. Failures here leave orphaned keys but the base
	// itself is gone; report the error so callers can retry.
	chunkKeys, err := r.store.Scan(ctx, chunkPrefix(id)+"*")
	if err != nil {
		return fmt.Errorf("scan chunks of %s: %w", id, err)
	}
	if len(chunkKeys) > 0 {
		if err := r.store.DelMulti(ctx, chunkKeys); err != nil {
			return fmt.Errorf("purge chunks of %s: %w", id, err)
		}
	}

	return nil
}

// Redis key patterns: kbridge:knowledge:{id}, kbridge:{id}:idx, kbridge:{id}:

func metaKey(id string) string {
	return fmt.Sprintf("%sknowledge:%s", domain.KeyPrefix, id)
}

func indexName(id string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, id)
}

func chunkPrefix(id string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, id)
}
