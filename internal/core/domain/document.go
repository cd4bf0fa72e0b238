package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaType identifies the kind of artefact a document was uploaded as.
// The set is closed; anything else is rejected at upload time.
type MediaType string

// Supported media types.
const (
	// MediaTypePDF is a PDF document, extracted to plain text.
	MediaTypePDF MediaType = "pdf"

	// MediaTypeMP3 is MP3 audio, transcribed into timestamped segments.
	MediaTypeMP3 MediaType = "mp3"

	// MediaTypeWAV is WAV audio, transcribed into timestamped segments.
	MediaTypeWAV MediaType = "wav"

	// MediaTypeMP4 is MP4 video, transcribed into timestamped segments.
	MediaTypeMP4 MediaType = "mp4"
)

// IsValid returns true if the media type is supported.
func (m MediaType) IsValid() bool {
	switch m {
	case MediaTypePDF, MediaTypeMP3, MediaTypeWAV, MediaTypeMP4:
		return true
	default:
		return false
	}
}

// IsTimeBased returns true for media whose chunks carry time spans.
func (m MediaType) IsTimeBased() bool {
	return m == MediaTypeMP3 || m == MediaTypeWAV || m == MediaTypeMP4
}

// String returns the string representation.
func (m MediaType) String() string {
	return string(m)
}

// MediaTypeFromFilename derives the media type from a file extension.
// The returned type must be checked with IsValid.
func MediaTypeFromFilename(name string) MediaType {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return MediaType(strings.ToLower(ext))
}

// AllMediaTypes returns every supported media type.
func AllMediaTypes() []MediaType {
	return []MediaType{MediaTypePDF, MediaTypeMP3, MediaTypeWAV, MediaTypeMP4}
}

// Document represents an uploaded artefact owned by a user.
// Documents are never mutated after creation; deleting one removes its chunks.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// UserID identifies the owning user.
	UserID string

	// Filename is the original name of the uploaded file.
	Filename string

	// MediaType is the kind of artefact.
	MediaType MediaType

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time
}

// StoredName returns the file name used in upload storage.
func (d Document) StoredName() string {
	return d.ID + "." + d.MediaType.String()
}

// TimeSpan is a start/end offset in seconds within time-based media.
type TimeSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Chunk represents a retrievable unit within a document.
// Chunks are immutable once created except for the attached embedding.
type Chunk struct {
	// ID is the unique, stable identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk. Never empty.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Span is the time range for audio/video chunks, nil for text chunks.
	Span *TimeSpan

	// Embedding is the persisted vector, nil until the document is first indexed.
	Embedding []float32
}

// HasEmbedding returns true if a vector has been attached.
func (c Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// ChunkInput is the payload for creating a chunk.
type ChunkInput struct {
	// Content is the chunk text.
	Content string

	// Span is optional and only set for time-based media.
	Span *TimeSpan
}

// ChunkEmbedding pairs a chunk with its computed vector.
type ChunkEmbedding struct {
	ChunkID   string
	Embedding []float32
}

// Segment is a timestamped transcript fragment produced by transcription.
type Segment struct {
	Text  string
	Start float64
	End   float64
}
