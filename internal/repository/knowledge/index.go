package knowledge

import (
	"fmt"

	"github.com/shackdown/kbridge/internal/db"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
)

// buildIndex creates an IndexDefinition from the declared metadata fields
// plus the internal __content TEXT and __vector HNSW attributes. The TEXT
// field serves BM25 keyword search; requires the Redis 8 query engine.
func buildIndex(id string, fields []domkn.Field, vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	def := &db.IndexDefinition{
		Name:     indexName(id),
		Prefixes: []string{chunkPrefix(id)},
		Fields:   make([]db.IndexField, 0, len(fields)+2),
	}

	for _, f := range fields {
		var fieldType db.IndexFieldType
		switch f.FieldType() {
		case domkn.Tag:
			fieldType = db.IndexFieldTag
		case domkn.Numeric:
			fieldType = db.IndexFieldNumeric
		default:
			return nil, fmt.Errorf("unknown field type: %s", f.FieldType())
		}

		def.Fields = append(def.Fields, db.IndexField{
			Name: f.Name(),
			Type: fieldType,
		})
	}

	def.Fields = append(def.Fields, db.IndexField{
		Name: "__content",
		Type: db.IndexFieldText,
	})

	def.Fields = append(def.Fields, db.IndexField{
		Name:              "__vector",
		Alias:             "vector",
		Type:              db.IndexFieldVector,
		VectorDim:         vectorDim,
		VectorDistance:    db.DistanceCosine,
		VectorM:           hnsw.M,
		VectorEFConstruct: hnsw.EFConstruct,
	})

	return def, nil
}
