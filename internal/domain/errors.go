package domain

import "errors"

var (
	// ErrKnowledgeNotFound signals a missing knowledge base.
	ErrKnowledgeNotFound = errors.New("knowledge base not found")
	// ErrChunkNotFound signals a missing content chunk.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument signals a request that fails domain validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
