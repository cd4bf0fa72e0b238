// Package uploads stores uploaded media files on the local filesystem.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.UploadStore = (*Store)(nil)

// mimeTypes maps detected MIME types to supported media types.
var mimeTypes = map[string]domain.MediaType{
	"application/pdf": domain.MediaTypePDF,
	"audio/mpeg":      domain.MediaTypeMP3,
	"audio/wav":       domain.MediaTypeWAV,
	"video/mp4":       domain.MediaTypeMP4,
	"audio/mp4":       domain.MediaTypeMP4,
}

// Store keeps uploads in a single directory.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put copies src into the store under name and returns the stored path.
// The copy is written to a temporary file and renamed into place.
func (s *Store) Put(ctx context.Context, src, name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: invalid upload name %q", domain.ErrInvalidInput, name)
	}

	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, src)
		}
		return "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: in}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("copy upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dst := s.Path(name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("move upload into place: %w", err)
	}
	return dst, nil
}

// Path returns where name is stored.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Remove deletes a stored upload. Missing files are not an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// DetectMediaType sniffs the content of the file at path.
func (s *Store) DetectMediaType(path string) (domain.MediaType, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", fmt.Errorf("detect media type: %w", err)
	}

	for m := mt; m != nil; m = m.Parent() {
		for mime, mediaType := range mimeTypes {
			if m.Is(mime) {
				return mediaType, nil
			}
		}
	}
	return "", fmt.Errorf("%w: content type %s", domain.ErrUnsupportedType, mt.String())
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
