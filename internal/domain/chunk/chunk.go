// Package chunk defines the content chunk aggregate: one retrievable unit
// of text inside a knowledge base.
package chunk

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum chunk content size in bytes.
const MaxContentSize = 163840 // 160KB

// MaxIDLength bounds chunk identifiers.
const MaxIDLength = 256

// Chunk is the content chunk aggregate (immutable value object).
type Chunk struct {
	id       string
	content  string
	title    string
	tags     map[string]string
	numerics map[string]float64
	vector   []float32
}

// New validates and creates a Chunk.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Content: non-empty, max 160KB.
// Tag/numeric metadata is validated against the knowledge base schema in the
// service layer.
func New(id, content, title string, tags map[string]string, numerics map[string]float64) (Chunk, error) {
	if id == "" {
		return Chunk{}, fmt.Errorf("chunk ID is required")
	}
	if len(id) > MaxIDLength {
		return Chunk{}, fmt.Errorf("chunk ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Chunk{}, fmt.Errorf("chunk ID must be alphanumeric with underscores and hyphens")
	}
	if content == "" {
		return Chunk{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Chunk{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}

	return Chunk{
		id:       id,
		content:  content,
		title:    title,
		tags:     cloneStringMap(tags),
		numerics: cloneFloat64Map(numerics),
	}, nil
}

// Reconstruct creates a Chunk without validation (storage hydration).
func Reconstruct(
	id, content, title string, tags map[string]string,
	numerics map[string]float64, vector []float32,
) Chunk {
	return Chunk{id: id, content: content, title: title, tags: tags, numerics: numerics, vector: vector}
}

// ID returns the chunk identifier.
func (c *Chunk) ID() string { return c.id }

// Content returns the chunk text content.
func (c *Chunk) Content() string { return c.content }

// Title returns the source title or locator.
func (c *Chunk) Title() string { return c.title }

// Tags returns the tag metadata fields.
func (c *Chunk) Tags() map[string]string { return c.tags }

// Numerics returns the numeric metadata fields.
func (c *Chunk) Numerics() map[string]float64 { return c.numerics }

// Vector returns the embedding vector.
func (c *Chunk) Vector() []float32 { return c.vector }

// SetVector sets the vector in place (mutation during ingestion).
func (c *Chunk) SetVector(v []float32) { c.vector = v }

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneFloat64Map(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
