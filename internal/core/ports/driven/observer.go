package driven

import "time"

// Observer receives events from the retrieval pipeline.
// Implementations must be safe for concurrent use.
type Observer interface {
	// IndexCacheHit records a load served from the index cache.
	IndexCacheHit()

	// IndexBuilt records a freshly built index, the number of chunks
	// embedded for it and the build duration.
	IndexBuilt(chunks, embedded int, took time.Duration)

	// EmbeddingCall records one call to the embedding service.
	EmbeddingCall(texts int, err error)

	// QueryAnswered records a finished question with its outcome label.
	QueryAnswered(outcome string, took time.Duration)
}
