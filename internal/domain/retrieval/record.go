package retrieval

// Record is a single retrieval hit in the external API shape:
// content, relevance score, source title, and a flat metadata map.
type Record struct {
	chunkID  string
	content  string
	score    float64
	title    string
	metadata map[string]any
}

// NewRecord creates a retrieval record.
func NewRecord(chunkID, content string, score float64, title string, metadata map[string]any) Record {
	return Record{chunkID: chunkID, content: content, score: score, title: title, metadata: metadata}
}

// ChunkID returns the backing chunk identifier.
func (r *Record) ChunkID() string { return r.chunkID }

// Content returns the chunk text.
func (r *Record) Content() string { return r.content }

// Score returns the relevance score.
func (r *Record) Score() float64 { return r.score }

// Title returns the source title or locator.
func (r *Record) Title() string { return r.title }

// Metadata returns the flat metadata map.
func (r *Record) Metadata() map[string]any { return r.metadata }

// WithScore returns a copy with the score replaced (used by fusion and
// normalization, which re-score existing hits).
func (r *Record) WithScore(score float64) Record {
	c := *r
	c.score = score
	return c
}
