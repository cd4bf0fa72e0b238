package domain

// Answer is the result of a question asked against a document.
type Answer struct {
	// Text is the completion model's response, returned verbatim.
	Text string `json:"answer"`

	// Sources are the time spans of the retrieved chunks in rank order.
	// Chunks without spans (e.g. PDF text) are omitted.
	Sources []TimeSpan `json:"sources"`
}

// IndexState describes whether a document's vector index can be searched.
type IndexState int

const (
	// IndexStateAbsent means no chunks are persisted yet; processing is not finished.
	IndexStateAbsent IndexState = iota

	// IndexStateReady means the index is built and searchable.
	IndexStateReady
)

// String returns the string representation.
func (s IndexState) String() string {
	switch s {
	case IndexStateAbsent:
		return "absent"
	case IndexStateReady:
		return "ready"
	default:
		return unknownDescription
	}
}

// ProcessResult summarises a completed ingestion.
type ProcessResult struct {
	// DocumentID is the processed document.
	DocumentID string

	// MediaType is the kind of artefact processed.
	MediaType MediaType

	// Chunks is the number of chunks persisted.
	Chunks int
}

// IndexInfo describes a loaded document index.
type IndexInfo struct {
	// DocumentID is the indexed document.
	DocumentID string

	// State reports whether the index exists.
	State IndexState

	// Vectors is the number of indexed chunks.
	Vectors int

	// Dimension is the vector length of the index.
	Dimension int
}
