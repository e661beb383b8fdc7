package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"

	domchunk "github.com/shackdown/kbridge/internal/domain/chunk"
	domkn "github.com/shackdown/kbridge/internal/domain/knowledge"
	ingestuc "github.com/shackdown/kbridge/internal/usecase/ingest"
)

const maxBatchSize = 100

// CreateKnowledge handles POST /v1/knowledge.
func (s *Server) CreateKnowledge(w http.ResponseWriter, r *http.Request) {
	var req createKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	fields, err := fieldsFromDTO(req.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	kb, err := s.knowledge.Create(
		r.Context(), req.ID, req.Name, req.Description,
		domkn.Mode(req.RetrievalMode), fields,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, knowledgeToDTO(&kb))
}

// ListKnowledge handles GET /v1/knowledge.
func (s *Server) ListKnowledge(w http.ResponseWriter, r *http.Request) {
	bases, err := s.knowledge.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]knowledgeResponse, len(bases))
	for i := range bases {
		items[i] = knowledgeToDTO(&bases[i])
	}

	writeJSON(w, http.StatusOK, knowledgeListResponse{Items: items})
}

// GetKnowledge handles GET /v1/knowledge/{knowledgeID}.
func (s *Server) GetKnowledge(w http.ResponseWriter, r *http.Request) {
	kb, err := s.knowledge.Get(r.Context(), gochi.URLParam(r, "knowledgeID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, knowledgeToDTO(&kb))
}

// DeleteKnowledge handles DELETE /v1/knowledge/{knowledgeID}.
func (s *Server) DeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := s.knowledge.Delete(r.Context(), gochi.URLParam(r, "knowledgeID")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpsertChunk handles PUT /v1/knowledge/{knowledgeID}/chunks/{chunkID}.
func (s *Server) UpsertChunk(w http.ResponseWriter, r *http.Request) {
	knowledgeID := gochi.URLParam(r, "knowledgeID")
	chunkID := gochi.URLParam(r, "chunkID")

	var req upsertChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	c, err := chunkFromRequest(chunkID, req.Content, req.Title, req.Metadata)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	created, err := s.ingest.Upsert(r.Context(), knowledgeID, &c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/v1/knowledge/%s/chunks/%s", knowledgeID, chunkID))
	}

	writeJSON(w, status, chunkToDTO(&c))
}

// BatchUpsertChunks handles POST /v1/knowledge/{knowledgeID}/chunks.
func (s *Server) BatchUpsertChunks(w http.ResponseWriter, r *http.Request) {
	knowledgeID := gochi.URLParam(r, "knowledgeID")

	var req batchChunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Chunks) == 0 || len(req.Chunks) > maxBatchSize {
		writeError(w, http.StatusBadRequest, codeInvalidRequest,
			fmt.Sprintf("chunks count must be between 1 and %d", maxBatchSize))
		return
	}

	chunks := make([]domchunk.Chunk, 0, len(req.Chunks))
	for _, item := range req.Chunks {
		c, err := chunkFromRequest(item.ID, item.Content, item.Title, item.Metadata)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		chunks = append(chunks, c)
	}

	results, err := s.ingest.BatchUpsert(r.Context(), knowledgeID, chunks)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	succeeded, failed := 0, 0
	items := make([]batchResultItem, len(results))
	for i, res := range results {
		items[i] = batchResultToDTO(res)
		if res.Err == nil {
			succeeded++
		} else {
			failed++
		}
	}

	writeJSON(w, http.StatusOK, batchChunksResponse{
		Items:     items,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

// DeleteChunk handles DELETE /v1/knowledge/{knowledgeID}/chunks/{chunkID}.
func (s *Server) DeleteChunk(w http.ResponseWriter, r *http.Request) {
	knowledgeID := gochi.URLParam(r, "knowledgeID")
	chunkID := gochi.URLParam(r, "chunkID")

	if err := s.ingest.Delete(r.Context(), knowledgeID, chunkID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func batchResultToDTO(res ingestuc.BatchResult) batchResultItem {
	item := batchResultItem{ID: res.ID, Status: "ok"}
	if res.Err != nil {
		item.Status = "error"
		item.Error = &errorResponse{
			ErrorCode: batchErrorCode(res.Err),
			ErrorMsg:  safeDomainMessage(res.Err),
		}
	}
	return item
}
