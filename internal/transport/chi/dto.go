package chi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	domchunk "github.com/shackdown/kbridge/internal/domain/chunk"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
	domret "github.com/shackdown/kbridge/internal/domain/retrieval"
)

// retrievalRequest is the external knowledge API request body.
type retrievalRequest struct {
	KnowledgeID       string             `json:"knowledge_id"`
	Query             string             `json:"query"`
	RetrievalSetting  retrievalSetting   `json:"retrieval_setting"`
	MetadataCondition *metadataCondition `json:"metadata_condition,omitempty"`
}

type retrievalSetting struct {
	TopK           int     `json:"top_k"`
	ScoreThreshold float64 `json:"score_threshold"`
}

// metadataCondition is the optional pre-filter on chunk metadata.
type metadataCondition struct {
	LogicalOperator string           `json:"logical_operator"`
	Conditions      []metadataClause `json:"conditions"`
}

type metadataClause struct {
	Name               []string `json:"name"`
	ComparisonOperator string   `json:"comparison_operator"`
	Value              any      `json:"value"`
}

type retrievalRecord struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`
}

type retrievalResponse struct {
	Records []retrievalRecord `json:"records"`
}

type fieldDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type createKnowledgeRequest struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	RetrievalMode string     `json:"retrieval_mode"`
	Fields        []fieldDef `json:"fields"`
}

type knowledgeResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	RetrievalMode string     `json:"retrieval_mode"`
	Fields        []fieldDef `json:"fields,omitempty"`
	VectorDim     int        `json:"vector_dimensions"`
	ChunkCount    int        `json:"chunk_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

type knowledgeListResponse struct {
	Items []knowledgeResponse `json:"items"`
}

type upsertChunkRequest struct {
	Content  string         `json:"content"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`
}

type chunkResponse struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type batchChunkItem struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`
}

type batchChunksRequest struct {
	Chunks []batchChunkItem `json:"chunks"`
}

type batchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *errorResponse `json:"error,omitempty"`
}

type batchChunksResponse struct {
	Items     []batchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordToDTO(r *domret.Record) retrievalRecord {
	metadata := r.Metadata()
	if metadata == nil {
		metadata = map[string]any{}
	}
	return retrievalRecord{
		Content:  r.Content(),
		Score:    r.Score(),
		Title:    r.Title(),
		Metadata: metadata,
	}
}

// filterFromCondition translates the metadata_condition block into the domain
// filter. Positive clauses go to must ("and") or should ("or"); negated
// operators (is not, not contains, a numeric not-equal) always go to must_not.
func filterFromCondition(mc *metadataCondition) (domret.Filter, error) {
	if mc == nil {
		return domret.Filter{}, nil
	}

	positiveAsShould := false
	switch strings.ToLower(mc.LogicalOperator) {
	case "", "and":
	case "or":
		positiveAsShould = true
	default:
		return domret.Filter{}, fmt.Errorf("logical_operator must be %q or %q, got %q", "and", "or", mc.LogicalOperator)
	}

	var must, should, mustNot []domret.Condition
	for _, clause := range mc.Conditions {
		if len(clause.Name) == 0 {
			return domret.Filter{}, fmt.Errorf("metadata condition is missing a field name")
		}
		for _, name := range clause.Name {
			cond, negated, err := conditionFromClause(name, clause.ComparisonOperator, clause.Value)
			if err != nil {
				return domret.Filter{}, err
			}
			switch {
			case negated:
				mustNot = append(mustNot, cond)
			case positiveAsShould:
				should = append(should, cond)
			default:
				must = append(must, cond)
			}
		}
	}

	f, err := domret.NewFilter(must, should, mustNot)
	if err != nil {
		return domret.Filter{}, fmt.Errorf("build filter: %w", err)
	}
	return f, nil
}

func conditionFromClause(name, op string, value any) (domret.Condition, bool, error) {
	switch op {
	case "is":
		cond, err := matchCondition(name, value, domret.MatchExact)
		return cond, false, err
	case "is not":
		cond, err := matchCondition(name, value, domret.MatchExact)
		return cond, true, err
	case "contains":
		cond, err := matchCondition(name, value, domret.MatchContains)
		return cond, false, err
	case "not contains":
		cond, err := matchCondition(name, value, domret.MatchContains)
		return cond, true, err
	case "=", "≠", "!=", ">", "<", "≥", ">=", "≤", "<=":
		return rangeCondition(name, op, value)
	default:
		return domret.Condition{}, false, fmt.Errorf("unsupported comparison_operator %q for field %q", op, name)
	}
}

func matchCondition(name string, value any, mode domret.MatchMode) (domret.Condition, error) {
	s, ok := value.(string)
	if !ok {
		return domret.Condition{}, fmt.Errorf("field %q expects a string value, got %T", name, value)
	}
	cond, err := domret.NewMatch(name, s, mode)
	if err != nil {
		return domret.Condition{}, fmt.Errorf("match condition: %w", err)
	}
	return cond, nil
}

func rangeCondition(name, op string, value any) (domret.Condition, bool, error) {
	f, err := numericValue(name, value)
	if err != nil {
		return domret.Condition{}, false, err
	}

	var r domret.Range
	negated := false
	switch op {
	case "=":
		r, err = domret.NewRangeBounds(nil, &f, nil, &f)
	case "≠", "!=":
		r, err = domret.NewRangeBounds(nil, &f, nil, &f)
		negated = true
	case ">":
		r, err = domret.NewRangeBounds(&f, nil, nil, nil)
	case "<":
		r, err = domret.NewRangeBounds(nil, nil, &f, nil)
	case "≥", ">=":
		r, err = domret.NewRangeBounds(nil, &f, nil, nil)
	case "≤", "<=":
		r, err = domret.NewRangeBounds(nil, nil, nil, &f)
	}
	if err != nil {
		return domret.Condition{}, false, fmt.Errorf("range bounds: %w", err)
	}

	cond, err := domret.NewRange(name, r)
	if err != nil {
		return domret.Condition{}, false, fmt.Errorf("range condition: %w", err)
	}
	return cond, negated, nil
}

func numericValue(name string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q expects a numeric value, got %q", name, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %q expects a numeric value, got %T", name, value)
	}
}

func fieldsFromDTO(defs []fieldDef) ([]domkn.Field, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	fields := make([]domkn.Field, len(defs))
	for i, d := range defs {
		f, err := domkn.NewField(d.Name, domkn.FieldType(d.Type))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", d.Name, err)
		}
		fields[i] = f
	}
	return fields, nil
}

func knowledgeToDTO(kb *domkn.Knowledge) knowledgeResponse {
	var fields []fieldDef
	if len(kb.Fields()) > 0 {
		fields = make([]fieldDef, len(kb.Fields()))
		for i, f := range kb.Fields() {
			fields[i] = fieldDef{Name: f.Name(), Type: string(f.FieldType())}
		}
	}

	return knowledgeResponse{
		ID:            kb.ID(),
		Name:          kb.Name(),
		Description:   kb.Description(),
		RetrievalMode: string(kb.Mode()),
		Fields:        fields,
		VectorDim:     kb.VectorDim(),
		ChunkCount:    kb.ChunkCount(),
		CreatedAt:     time.UnixMilli(kb.CreatedAt()).UTC(),
	}
}

// splitMetadata sorts a flat metadata map into tag and numeric fields.
// JSON numbers decode as float64, everything else must be a string.
func splitMetadata(metadata map[string]any) (map[string]string, map[string]float64, error) {
	if len(metadata) == 0 {
		return nil, nil, nil
	}
	tags := make(map[string]string)
	numerics := make(map[string]float64)
	for k, v := range metadata {
		switch val := v.(type) {
		case string:
			tags[k] = val
		case float64:
			numerics[k] = val
		default:
			return nil, nil, fmt.Errorf("metadata field %q must be a string or a number, got %T", k, v)
		}
	}
	return tags, numerics, nil
}

func chunkFromRequest(id, content, title string, metadata map[string]any) (domchunk.Chunk, error) {
	tags, numerics, err := splitMetadata(metadata)
	if err != nil {
		return domchunk.Chunk{}, err
	}
	c, err := domchunk.New(id, content, title, tags, numerics)
	if err != nil {
		return domchunk.Chunk{}, fmt.Errorf("build chunk: %w", err)
	}
	return c, nil
}

func chunkToDTO(c *domchunk.Chunk) chunkResponse {
	var metadata map[string]any
	if len(c.Tags())+len(c.Numerics()) > 0 {
		metadata = make(map[string]any, len(c.Tags())+len(c.Numerics()))
		for k, v := range c.Tags() {
			metadata[k] = v
		}
		for k, v := range c.Numerics() {
			metadata[k] = v
		}
	}

	return chunkResponse{
		ID:       c.ID(),
		Content:  c.Content(),
		Title:    c.Title(),
		Metadata: metadata,
	}
}
