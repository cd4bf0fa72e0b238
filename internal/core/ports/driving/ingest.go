package driving

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// IngestService registers uploaded files and turns them into chunks.
type IngestService interface {
	// Register stores the file at path for userID and creates its document.
	// Returns domain.ErrUnsupportedType for files outside the supported media types.
	Register(ctx context.Context, userID, path string) (*domain.Document, error)

	// Process extracts or transcribes the document and persists its chunks.
	Process(ctx context.Context, documentID string) (*domain.ProcessResult, error)
}
