package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown media type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidConfiguration indicates parameters that violate their constraints,
	// such as a chunk overlap not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates a vector whose length differs from the index dimension,
	// or persisted embeddings of differing lengths within one document.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUpstreamUnavailable indicates the embedding or completion service failed,
	// timed out or returned a malformed response.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrNotReady indicates the document has no chunks yet; processing has not finished.
	ErrNotReady = errors.New("document not ready")

	// ErrNoRelevantContent indicates retrieval produced no chunks for the document.
	ErrNoRelevantContent = errors.New("no relevant content")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Question answering is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrTranscriptionUnavailable indicates no transcriber is configured.
	// Audio and video documents cannot be processed.
	ErrTranscriptionUnavailable = errors.New("transcription service unavailable")
)
