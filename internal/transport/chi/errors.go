package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shackdown/kbridge/internal/domain"
)

// Numeric error codes of the external knowledge API envelope.
const (
	codeInvalidAuthHeader = 1001
	codeAuthFailed        = 1002
	codeKnowledgeNotFound = 2001
	codeChunkNotFound     = 2002
	codeInvalidRequest    = 3001
	codeAlreadyExists     = 3002
	codeEmbeddingProvider = 4001
	codeInternal          = 5000
)

// errorResponse is the wire-level error envelope.
type errorResponse struct {
	ErrorCode int    `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, errorResponse{
		ErrorCode: code,
		ErrorMsg:  message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrKnowledgeNotFound,
		domain.ErrChunkNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidArgument,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status, code int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func batchErrorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrChunkNotFound):
		return codeChunkNotFound
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return codeInvalidRequest
	case errors.Is(err, domain.ErrInvalidArgument):
		return codeInvalidRequest
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return codeEmbeddingProvider
	default:
		return codeInternal
	}
}
