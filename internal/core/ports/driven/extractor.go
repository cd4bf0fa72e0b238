package driven

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// TextExtractor extracts plain text from a stored document file.
type TextExtractor interface {
	// Extract returns the text content of the file at path.
	Extract(ctx context.Context, path string) (string, error)

	// Supports reports whether the extractor handles the media type.
	Supports(mediaType domain.MediaType) bool
}

// Transcriber converts audio or video into timestamped segments.
type Transcriber interface {
	// Transcribe returns the segments of the file at path in playback order.
	// Failures wrap domain.ErrUpstreamUnavailable.
	Transcribe(ctx context.Context, path string) ([]domain.Segment, error)

	// ModelName returns the transcription model in use.
	ModelName() string
}
