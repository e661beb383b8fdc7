package chi

import (
	"encoding/json"
	"net/http"

	domret "github.com/shackdown/kbridge/internal/domain/retrieval"
)

// Retrieval handles POST /retrieval, the endpoint the host platform calls to
// fetch relevant chunks from a knowledge base.
func (s *Server) Retrieval(w http.ResponseWriter, r *http.Request) {
	var req retrievalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.KnowledgeID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "knowledge_id is required")
		return
	}

	filter, err := filterFromCondition(req.MetadataCondition)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	q, err := domret.NewQuery(
		req.Query,
		req.RetrievalSetting.TopK,
		req.RetrievalSetting.ScoreThreshold,
		filter,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	records, err := s.retrieval.Retrieve(r.Context(), req.KnowledgeID, &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := retrievalResponse{Records: make([]retrievalRecord, len(records))}
	for i := range records {
		resp.Records[i] = recordToDTO(&records[i])
	}

	writeJSON(w, http.StatusOK, resp)
}
