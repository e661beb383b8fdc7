package knowledge

import (
	"encoding/json"
	"fmt"
	"strconv"

	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
)

// fieldRow is the JSON-serializable representation of a field for HSET.
type fieldRow struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// knowledgeToHash converts a domain Knowledge to a map for HSET.
func knowledgeToHash(kb domkn.Knowledge) (map[string]string, error) {
	rows := make([]fieldRow, len(kb.Fields()))
	for i, f := range kb.Fields() {
		rows[i] = fieldRow{Name: f.Name(), Type: string(f.FieldType())}
	}
	fieldsJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return map[string]string{
		"id":          kb.ID(),
		"name":        kb.Name(),
		"description": kb.Description(),
		"mode":        string(kb.Mode()),
		"fields_json": string(fieldsJSON),
		"vector_dim":  strconv.Itoa(kb.VectorDim()),
		"created_at":  strconv.FormatInt(kb.CreatedAt(), 10),
	}, nil
}

// knowledgeFromHash hydrates a domain Knowledge from an HGETALL result map.
func knowledgeFromHash(m map[string]string, defaultVectorDim int) (domkn.Knowledge, error) {
	id := m["id"]
	createdAtStr := m["created_at"]
	fieldsJSON := m["fields_json"]

	createdAt, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return domkn.Knowledge{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var rows []fieldRow
	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &rows); err != nil {
			return domkn.Knowledge{}, fmt.Errorf("unmarshal fields: %w", err)
		}
	}

	fields := make([]domkn.Field, len(rows))
	for i, r := range rows {
		fields[i] = domkn.ReconstructField(r.Name, domkn.FieldType(r.Type))
	}

	vectorDim := defaultVectorDim
	if dimStr, ok := m["vector_dim"]; ok && dimStr != "" {
		if parsed, err := strconv.Atoi(dimStr); err == nil {
			vectorDim = parsed
		}
	}

	mode := domkn.Mode(m["mode"])
	if mode == "" {
		mode = domkn.Semantic
	}

	return domkn.Reconstruct(id, m["name"], m["description"], mode, fields, vectorDim, createdAt), nil
}
