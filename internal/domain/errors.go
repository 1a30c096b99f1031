package domain

import "errors"

var (
	// ErrInvalidQuery signals a missing or malformed recommendation query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrLLMUnavailable signals a transport failure against the LLM inference service.
	ErrLLMUnavailable = errors.New("llm service unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrUnknownAttribute signals a filter attribute outside the catalog schema.
	ErrUnknownAttribute = errors.New("unknown attribute")
)
