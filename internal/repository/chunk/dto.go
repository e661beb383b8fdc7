package chunk

import (
	"encoding/binary"
	"math"
	"strconv"

	domchunk "github.com/shackdown/kbridge/internal/domain/chunk"
)

// buildHashFields converts a domain Chunk into a flat map[string]string for HSET.
func buildHashFields(c *domchunk.Chunk) map[string]string {
	m := make(map[string]string, 3+len(c.Tags())+len(c.Numerics()))
	m["__content"] = c.Content()
	m["__vector"] = vectorToBytes(c.Vector())
	if c.Title() != "" {
		m["__title"] = c.Title()
	}
	for k, v := range c.Tags() {
		m[k] = v
	}
	for k, v := range c.Numerics() {
		m[k] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Chunk.
// Numeric-looking values land in numerics; everything else is a tag. The
// knowledge base schema disambiguates on read paths that need exactness.
func parseHashFields(id string, m map[string]string) domchunk.Chunk {
	var content, title string
	var vector []float32
	tags := make(map[string]string)
	numerics := make(map[string]float64)

	for k, v := range m {
		switch k {
		case "__content":
			content = v
		case "__title":
			title = v
		case "__vector":
			vector = bytesToVector(v)
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				numerics[k] = f
			} else {
				tags[k] = v
			}
		}
	}

	return domchunk.Reconstruct(id, content, title, tags, numerics, vector)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
