// Package retrieval defines the validated retrieval query and the record
// shape returned to the calling platform.
package retrieval

import "fmt"

// Query parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length.
	MaxQueryLength = 4096
	// DefaultTopK applies when the client omits top_k.
	DefaultTopK = 10
	// MaxTopK caps the number of records a single call may request.
	MaxTopK = 50
)

// Query is a validated retrieval request.
type Query struct {
	text           string
	topK           int
	scoreThreshold float64
	filter         Filter
}

// NewQuery validates and normalizes retrieval parameters.
// topK defaults to 10 and is clamped to MaxTopK. scoreThreshold must lie in
// [0, 1]; a record is returned only when its score is strictly greater.
func NewQuery(text string, topK int, scoreThreshold float64, filter Filter) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("query is required")
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if topK < 0 {
		return Query{}, fmt.Errorf("top_k must be positive")
	}
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if scoreThreshold < 0 || scoreThreshold > 1 {
		return Query{}, fmt.Errorf("score_threshold must be between 0 and 1")
	}

	return Query{
		text:           text,
		topK:           topK,
		scoreThreshold: scoreThreshold,
		filter:         filter,
	}, nil
}

// Text returns the query text.
func (q *Query) Text() string { return q.text }

// TopK returns the maximum number of records to return.
func (q *Query) TopK() int { return q.topK }

// ScoreThreshold returns the minimum (exclusive) relevance score.
func (q *Query) ScoreThreshold() float64 { return q.scoreThreshold }

// Filter returns the metadata pre-filter.
func (q *Query) Filter() Filter { return q.filter }
