package driven

// Chunker splits extracted text into chunk contents.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk splits text into ordered windows. Empty text yields no chunks.
	Chunk(text string) ([]string, error)
}
