package retrieval

import (
	"sort"

	domret "github.com/shackdown/kbridge/internal/domain/retrieval"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges KNN and BM25 results via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// When a chunk appears in both lists, the KNN record's fields are kept.
func fuseRRF(knn, bm25 []domret.Record, topK int) []domret.Record {
	type scored struct {
		rec   domret.Record
		score float64
	}

	merged := make(map[string]*scored)

	for rank, r := range knn {
		s := 1.0 / float64(rrfK+rank+1)
		merged[r.ChunkID()] = &scored{rec: r, score: s}
	}

	for rank, r := range bm25 {
		s := 1.0 / float64(rrfK+rank+1)
		if existing, ok := merged[r.ChunkID()]; ok {
			existing.score += s
		} else {
			merged[r.ChunkID()] = &scored{rec: r, score: s}
		}
	}

	records := make([]domret.Record, 0, len(merged))
	for _, s := range merged {
		records = append(records, s.rec.WithScore(s.score))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Score() > records[j].Score()
	})

	if len(records) > topK {
		records = records[:topK]
	}

	return records
}
