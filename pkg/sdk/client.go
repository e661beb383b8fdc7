// Package kbridge is a typed HTTP client for the kbridge external knowledge
// API: the retrieval endpoint plus the knowledge base management surface.
package kbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the kbridge SDK entry point.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the Bearer API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// New creates a Client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Retrieve queries a knowledge base and returns the matching records,
// sorted by descending score, bounded by the retrieval setting.
func (c *Client) Retrieve(ctx context.Context, req RetrievalRequest) ([]Record, error) {
	var resp retrievalResponse
	if err := c.doJSON(ctx, http.MethodPost, "/retrieval", req, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// CreateKnowledge creates a knowledge base.
func (c *Client) CreateKnowledge(ctx context.Context, req CreateKnowledgeRequest) (Knowledge, error) {
	var kb Knowledge
	if err := c.doJSON(ctx, http.MethodPost, "/v1/knowledge", req, &kb, nil); err != nil {
		return Knowledge{}, err
	}
	return kb, nil
}

// GetKnowledge fetches one knowledge base by id.
func (c *Client) GetKnowledge(ctx context.Context, id string) (Knowledge, error) {
	var kb Knowledge
	if err := c.doJSON(ctx, http.MethodGet, "/v1/knowledge/"+url.PathEscape(id), nil, &kb, nil); err != nil {
		return Knowledge{}, err
	}
	return kb, nil
}

// ListKnowledge lists all knowledge bases.
func (c *Client) ListKnowledge(ctx context.Context) ([]Knowledge, error) {
	var resp knowledgeListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/knowledge", nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// DeleteKnowledge removes a knowledge base with its index and chunks.
func (c *Client) DeleteKnowledge(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/knowledge/"+url.PathEscape(id), nil, nil, nil)
}

// UpsertChunk creates or updates one chunk. The returned bool reports
// whether the chunk was created.
func (c *Client) UpsertChunk(
	ctx context.Context, knowledgeID, chunkID string, req UpsertChunkRequest,
) (Chunk, bool, error) {
	path := fmt.Sprintf("/v1/knowledge/%s/chunks/%s", url.PathEscape(knowledgeID), url.PathEscape(chunkID))

	var chunk Chunk
	var status int
	if err := c.doJSON(ctx, http.MethodPut, path, req, &chunk, &status); err != nil {
		return Chunk{}, false, err
	}
	return chunk, status == http.StatusCreated, nil
}

// BatchUpsertChunks upserts up to 100 chunks in one call, embedding all
// contents in a single provider request where possible.
func (c *Client) BatchUpsertChunks(
	ctx context.Context, knowledgeID string, chunks []BatchChunk,
) (BatchUpsertResult, error) {
	path := fmt.Sprintf("/v1/knowledge/%s/chunks", url.PathEscape(knowledgeID))

	var resp BatchUpsertResult
	if err := c.doJSON(ctx, http.MethodPost, path, batchChunksRequest{Chunks: chunks}, &resp, nil); err != nil {
		return BatchUpsertResult{}, err
	}
	return resp, nil
}

// DeleteChunk removes one chunk.
func (c *Client) DeleteChunk(ctx context.Context, knowledgeID, chunkID string) error {
	path := fmt.Sprintf("/v1/knowledge/%s/chunks/%s", url.PathEscape(knowledgeID), url.PathEscape(chunkID))
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Health reports service health. A degraded service returns the report
// together with a non-nil *APIError carrying the 503 status.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &h, nil); err != nil {
		return Health{}, err
	}
	return h, nil
}

// doJSON performs a request with the standard auth header and decodes either
// the success payload into out or the numeric error envelope into *APIError.
func (c *Client) doJSON(
	ctx context.Context, method, path string, in, out any, statusOut *int,
) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("kbridge: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("kbridge: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("kbridge: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if statusOut != nil {
		*statusOut = resp.StatusCode
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("kbridge: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		ErrorCode int    `json:"error_code"`
		ErrorMsg  string `json:"error_msg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Code = envelope.ErrorCode
		apiErr.Msg = envelope.ErrorMsg
	}
	return apiErr
}
