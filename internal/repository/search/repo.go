// Package search runs FT queries against a knowledge base index and maps
// hits into retrieval records.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shackdown/kbridge/internal/db"
	"github.com/shackdown/kbridge/internal/domain"
	"github.com/shackdown/kbridge/internal/domain/retrieval"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements usecase retrieval.SearchRepository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// RETURN is deliberately omitted from both queries: declared metadata
// fields must come back alongside __content and __title, and their names
// are per-base. The raw __vector field is skipped during parsing instead.

// SearchKNN performs a KNN vector search with filter pre-filtering.
func (r *Repo) SearchKNN(
	ctx context.Context, knowledgeID string,
	vector []float32, f retrieval.Filter, topK int,
) ([]retrieval.Record, error) {
	q := &db.KNNQuery{
		IndexName: indexName(knowledgeID),
		Filter:    f,
		Vector:    vector,
		K:         topK,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", knowledgeID, err)
	}

	return parseResults(sr, knowledgeID), nil
}

// SearchBM25 performs a BM25 keyword search over the __content TEXT field.
func (r *Repo) SearchBM25(
	ctx context.Context, knowledgeID string,
	query string, f retrieval.Filter, topK int,
) ([]retrieval.Record, error) {
	q := &db.TextQuery{
		IndexName: indexName(knowledgeID),
		Query:     query,
		Filter:    f,
		TopK:      topK,
	}

	sr, err := r.store.SearchBM25(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search bm25 %s: %w", knowledgeID, err)
	}

	return parseResults(sr, knowledgeID), nil
}

// parseResults converts db.SearchResult into []retrieval.Record.
func parseResults(sr *db.SearchResult, knowledgeID string) []retrieval.Record {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := chunkPrefix(knowledgeID)
	records := make([]retrieval.Record, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		chunkID := strings.TrimPrefix(entry.Key, prefix)
		records = append(records, parseEntryFields(chunkID, entry))
	}

	return records
}

// parseEntryFields maps flat hash fields to a record. Declared metadata
// fields land in the metadata map; numeric-looking values become float64.
func parseEntryFields(chunkID string, entry db.SearchEntry) retrieval.Record {
	var content, title string
	metadata := make(map[string]any)

	for k, v := range entry.Fields {
		switch k {
		case "__content":
			content = v
		case "__title":
			title = v
		case "__vector":
			// raw embedding, never exposed
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				metadata[k] = f
			} else {
				metadata[k] = v
			}
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	return retrieval.NewRecord(chunkID, content, entry.Score, title, metadata)
}

func indexName(knowledgeID string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, knowledgeID)
}

func chunkPrefix(knowledgeID string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, knowledgeID)
}
