// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads the text layer of PDF files. Scanned pages without
// a text layer contribute nothing.
type Extractor struct{}

// NewExtractor creates a new PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supports reports whether the media type is PDF.
func (e *Extractor) Supports(mediaType domain.MediaType) bool {
	return mediaType == domain.MediaTypePDF
}

// Extract returns the text of every page that has any, joined with newlines.
func (e *Extractor) Extract(ctx context.Context, path string) (text string, err error) {
	logger.Info("Extracting text from PDF %s", path)

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf %s: %v", domain.ErrInvalidInput, path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf %s: %w", domain.ErrInvalidInput, path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		if strings.TrimSpace(content) != "" {
			pages = append(pages, content)
		}
	}

	text = strings.Join(pages, "\n")
	logger.Info("PDF text extraction completed, length=%d", len(text))
	return text, nil
}
