package kbridge

import (
	"errors"
	"fmt"
)

// Numeric error codes of the external knowledge API envelope.
const (
	CodeInvalidAuthHeader = 1001
	CodeAuthFailed        = 1002
	CodeKnowledgeNotFound = 2001
	CodeChunkNotFound     = 2002
	CodeInvalidRequest    = 3001
	CodeAlreadyExists     = 3002
	CodeEmbeddingProvider = 4001
	CodeInternal          = 5000
)

// APIError is the decoded numeric error envelope.
// Use errors.As() or the Is* helpers to check.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"error_code"`
	Msg        string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kbridge: %s (error_code=%d, http=%d)", e.Msg, e.Code, e.StatusCode)
}

func apiErrorCode(err error) (int, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return 0, false
}

// IsNotFound reports whether err is a knowledge base or chunk not-found error.
func IsNotFound(err error) bool {
	code, ok := apiErrorCode(err)
	return ok && (code == CodeKnowledgeNotFound || code == CodeChunkNotFound)
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	code, ok := apiErrorCode(err)
	return ok && (code == CodeInvalidAuthHeader || code == CodeAuthFailed)
}

// IsAlreadyExists reports whether err signals a duplicate knowledge base.
func IsAlreadyExists(err error) bool {
	code, ok := apiErrorCode(err)
	return ok && code == CodeAlreadyExists
}

// IsInvalidRequest reports whether err signals a validation failure.
func IsInvalidRequest(err error) bool {
	code, ok := apiErrorCode(err)
	return ok && code == CodeInvalidRequest
}
