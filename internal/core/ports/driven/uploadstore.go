package driven

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// UploadStore holds the original files of uploaded documents.
type UploadStore interface {
	// Put copies the file at src into storage under name and returns the stored path.
	Put(ctx context.Context, src, name string) (string, error)

	// Path returns the stored path for name.
	Path(name string) string

	// Remove deletes the stored file. Missing files are not an error.
	Remove(name string) error

	// DetectMediaType sniffs the content of the file at path.
	// Returns domain.ErrUnsupportedType for anything outside the supported set.
	DetectMediaType(path string) (domain.MediaType, error)
}
