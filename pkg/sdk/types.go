package kbridge

import "time"

// RetrievalRequest is the POST /retrieval body.
type RetrievalRequest struct {
	KnowledgeID       string             `json:"knowledge_id"`
	Query             string             `json:"query"`
	RetrievalSetting  RetrievalSetting   `json:"retrieval_setting"`
	MetadataCondition *MetadataCondition `json:"metadata_condition,omitempty"`
}

// RetrievalSetting bounds the result list.
type RetrievalSetting struct {
	TopK           int     `json:"top_k"`
	ScoreThreshold float64 `json:"score_threshold"`
}

// MetadataCondition pre-filters chunks by metadata before scoring.
type MetadataCondition struct {
	LogicalOperator string               `json:"logical_operator,omitempty"`
	Conditions      []MetadataCondClause `json:"conditions"`
}

// MetadataCondClause is one comparison inside a MetadataCondition.
type MetadataCondClause struct {
	Name               []string `json:"name"`
	ComparisonOperator string   `json:"comparison_operator"`
	Value              any      `json:"value"`
}

// Record is one retrieval hit.
type Record struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`
}

type retrievalResponse struct {
	Records []Record `json:"records"`
}

// Field declares one metadata field of a knowledge base schema.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateKnowledgeRequest is the POST /v1/knowledge body.
type CreateKnowledgeRequest struct {
	ID            string  `json:"id"`
	Name          string  `json:"name,omitempty"`
	Description   string  `json:"description,omitempty"`
	RetrievalMode string  `json:"retrieval_mode,omitempty"`
	Fields        []Field `json:"fields,omitempty"`
}

// Knowledge describes a knowledge base.
type Knowledge struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	RetrievalMode string    `json:"retrieval_mode"`
	Fields        []Field   `json:"fields,omitempty"`
	VectorDim     int       `json:"vector_dimensions"`
	ChunkCount    int       `json:"chunk_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type knowledgeListResponse struct {
	Items []Knowledge `json:"items"`
}

// UpsertChunkRequest is the PUT chunk body.
type UpsertChunkRequest struct {
	Content  string         `json:"content"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Chunk is a stored content chunk.
type Chunk struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// BatchChunk is one item of a batch upsert.
type BatchChunk struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type batchChunksRequest struct {
	Chunks []BatchChunk `json:"chunks"`
}

// BatchItemResult reports the outcome of one chunk in a batch upsert.
type BatchItemResult struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Error  *APIError `json:"error,omitempty"`
}

// BatchUpsertResult is the batch upsert response.
type BatchUpsertResult struct {
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// Health is the GET /health response.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
