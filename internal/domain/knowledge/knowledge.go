// Package knowledge defines the knowledge base aggregate: a named set of
// content chunks behind one search index, addressed by the external API's
// knowledge_id.
package knowledge

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// reservedIDs would collide with the gateway's own key namespaces:
// "knowledge" with the kbridge:knowledge:{id} metadata hashes,
// "emb_cache" with the kbridge:emb_cache:{hash} embedding cache.
var reservedIDs = map[string]bool{
	"knowledge": true,
	"emb_cache": true,
}

// MaxIDLength bounds knowledge base identifiers.
const MaxIDLength = 64

// Mode selects how a knowledge base answers retrieval queries.
type Mode string

const (
	// Semantic embeds the query and runs KNN vector search.
	Semantic Mode = "semantic"
	// Keyword runs BM25 full-text search.
	Keyword Mode = "keyword"
	// Hybrid fuses semantic and keyword rankings via RRF.
	Hybrid Mode = "hybrid"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Semantic || m == Keyword || m == Hybrid
}

// Knowledge is the knowledge base aggregate (immutable value object).
type Knowledge struct {
	id          string
	name        string
	description string
	mode        Mode
	fields      []Field
	vectorDim   int
	createdAt   int64
	chunkCount  int
}

// New validates and creates a Knowledge base.
// ID: ^[a-zA-Z0-9_-]+$, 1-64 chars. Mode defaults to semantic.
func New(id, name, description string, mode Mode, fields []Field, vectorDim int, createdAt int64) (Knowledge, error) {
	if id == "" {
		return Knowledge{}, fmt.Errorf("knowledge id is required")
	}
	if len(id) > MaxIDLength {
		return Knowledge{}, fmt.Errorf("knowledge id too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Knowledge{}, fmt.Errorf("knowledge id must be alphanumeric with underscores and hyphens")
	}
	if reservedIDs[id] {
		return Knowledge{}, fmt.Errorf("knowledge id %q is reserved", id)
	}
	if mode == "" {
		mode = Semantic
	}
	if !mode.IsValid() {
		return Knowledge{}, fmt.Errorf("invalid retrieval mode: %q", mode)
	}
	if vectorDim <= 0 {
		return Knowledge{}, fmt.Errorf("vector dimensions must be positive, got %d", vectorDim)
	}
	if name == "" {
		name = id
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name()] {
			return Knowledge{}, fmt.Errorf("duplicate field %q", f.Name())
		}
		seen[f.Name()] = true
	}

	return Knowledge{
		id:          id,
		name:        name,
		description: description,
		mode:        mode,
		fields:      fields,
		vectorDim:   vectorDim,
		createdAt:   createdAt,
	}, nil
}

// Reconstruct creates a Knowledge base without validation (storage hydration).
func Reconstruct(
	id, name, description string, mode Mode, fields []Field,
	vectorDim int, createdAt int64,
) Knowledge {
	return Knowledge{
		id: id, name: name, description: description, mode: mode,
		fields: fields, vectorDim: vectorDim, createdAt: createdAt,
	}
}

// ID returns the knowledge base identifier.
func (k *Knowledge) ID() string { return k.id }

// Name returns the display name.
func (k *Knowledge) Name() string { return k.name }

// Description returns the free-form description.
func (k *Knowledge) Description() string { return k.description }

// Mode returns the retrieval mode.
func (k *Knowledge) Mode() Mode { return k.mode }

// Fields returns the declared metadata field schema.
func (k *Knowledge) Fields() []Field { return k.fields }

// VectorDim returns the embedding vector dimensionality.
func (k *Knowledge) VectorDim() int { return k.vectorDim }

// CreatedAt returns the creation time in unix milliseconds.
func (k *Knowledge) CreatedAt() int64 { return k.createdAt }

// ChunkCount returns the number of chunks (populated on read paths only).
func (k *Knowledge) ChunkCount() int { return k.chunkCount }

// WithChunkCount returns a copy with the chunk count set.
func (k *Knowledge) WithChunkCount(n int) Knowledge {
	c := *k
	c.chunkCount = n
	return c
}

// FieldByName looks up a declared metadata field.
func (k *Knowledge) FieldByName(name string) (Field, bool) {
	for _, f := range k.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return Field{}, false
}
