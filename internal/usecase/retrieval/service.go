// Package retrieval implements the query side: embed, search, fuse, filter
// by score threshold, and bound by top_k.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shackdown/kbridge/internal/domain"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
	domret "github.com/shackdown/kbridge/internal/domain/retrieval"
	"github.com/shackdown/kbridge/internal/metrics"
)

// Service answers retrieval queries against a knowledge base, using the
// base's configured mode (semantic, keyword, or hybrid).
type Service struct {
	repo  SearchRepository
	bases KnowledgeReader
	embed Embedder
}

// New creates a retrieval service.
func New(repo SearchRepository, bases KnowledgeReader, embed Embedder) *Service {
	return &Service{repo: repo, bases: bases, embed: embed}
}

// Retrieve executes a retrieval query. Records come back sorted by score
// descending, every score strictly above the threshold, at most top_k of them.
func (s *Service) Retrieve(
	ctx context.Context, knowledgeID string, q *domret.Query,
) ([]domret.Record, error) {
	kb, err := s.bases.Get(ctx, knowledgeID)
	if err != nil {
		return nil, fmt.Errorf("get knowledge base: %w", err)
	}

	if err = validateFilterAgainstSchema(q.Filter(), &kb); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	mode := kb.Mode()
	start := time.Now()

	var records []domret.Record

	switch mode {
	case domkn.Semantic:
		records, err = s.retrieveSemantic(ctx, knowledgeID, q)
	case domkn.Keyword:
		records, err = s.retrieveKeyword(ctx, knowledgeID, q)
	case domkn.Hybrid:
		records, err = s.retrieveHybrid(ctx, knowledgeID, q)
	default:
		err = fmt.Errorf("unsupported retrieval mode: %s", mode)
	}
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(knowledgeID, string(mode), "error").Inc()
		return nil, err
	}

	// Keyword and hybrid scores are unbounded (BM25, RRF sums); normalize
	// to [0,1] so the client threshold applies uniformly across modes.
	if mode != domkn.Semantic {
		records = normalizeScores(records)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score() > records[j].Score()
	})

	// Threshold is exclusive: only scores strictly above it survive. This
	// applies at threshold 0 too, so zero-score hits are never returned.
	filtered := records[:0]
	for _, r := range records {
		if r.Score() > q.ScoreThreshold() {
			filtered = append(filtered, r)
		}
	}
	records = filtered

	if len(records) > q.TopK() {
		records = records[:q.TopK()]
	}

	metrics.RetrievalRequestsTotal.WithLabelValues(knowledgeID, string(mode), "success").Inc()
	metrics.RetrievalDuration.WithLabelValues(knowledgeID, string(mode)).Observe(time.Since(start).Seconds())
	metrics.RetrievalRecordsReturned.WithLabelValues(knowledgeID, string(mode)).Observe(float64(len(records)))

	return records, nil
}

// retrieveSemantic embeds the query and runs KNN search.
func (s *Service) retrieveSemantic(
	ctx context.Context, knowledgeID string, q *domret.Query,
) ([]domret.Record, error) {
	embResult, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	records, err := s.repo.SearchKNN(ctx, knowledgeID, embResult.Embedding, q.Filter(), q.TopK())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return records, nil
}

// retrieveKeyword runs BM25 search over chunk content.
func (s *Service) retrieveKeyword(
	ctx context.Context, knowledgeID string, q *domret.Query,
) ([]domret.Record, error) {
	records, err := s.repo.SearchBM25(ctx, knowledgeID, q.Text(), q.Filter(), q.TopK())
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}
	return records, nil
}

// retrieveHybrid runs KNN + BM25, then fuses via RRF.
func (s *Service) retrieveHybrid(
	ctx context.Context, knowledgeID string, q *domret.Query,
) ([]domret.Record, error) {
	embResult, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	knnRecords, err := s.repo.SearchKNN(ctx, knowledgeID, embResult.Embedding, q.Filter(), q.TopK())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	bm25Records, err := s.repo.SearchBM25(ctx, knowledgeID, q.Text(), q.Filter(), q.TopK())
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}

	return fuseRRF(knnRecords, bm25Records, q.TopK()), nil
}

// normalizeScores divides every score by the maximum, mapping the best hit
// to 1.0. No-op when the list is empty or the max is zero.
func normalizeScores(records []domret.Record) []domret.Record {
	var maxScore float64
	for _, r := range records {
		if r.Score() > maxScore {
			maxScore = r.Score()
		}
	}
	if maxScore <= 0 {
		return records
	}

	normalized := make([]domret.Record, len(records))
	for i, r := range records {
		normalized[i] = r.WithScore(r.Score() / maxScore)
	}
	return normalized
}

// validateFilterAgainstSchema ensures filter fields exist in the knowledge
// base and that filter type (match/range) matches the field type (tag/numeric).
func validateFilterAgainstSchema(f domret.Filter, kb *domkn.Knowledge) error {
	if f.IsEmpty() {
		return nil
	}
	groups := [][]domret.Condition{f.Must(), f.Should(), f.MustNot()}
	for _, conditions := range groups {
		for _, c := range conditions {
			fld, ok := kb.FieldByName(c.Key())
			if !ok {
				return fmt.Errorf("unknown filter field %q", c.Key())
			}
			if c.IsMatch() && fld.FieldType() != domkn.Tag {
				return fmt.Errorf("match filter on non-tag field %q", c.Key())
			}
			if c.IsRange() && fld.FieldType() != domkn.Numeric {
				return fmt.Errorf("range filter on non-numeric field %q", c.Key())
			}
		}
	}
	return nil
}
