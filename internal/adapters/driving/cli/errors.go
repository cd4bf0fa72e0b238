package cli

import (
	"errors"
	"strings"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

var (
	errIngestNotConfigured   = errors.New("ingest service not configured")
	errQueryNotConfigured    = errors.New("query service not configured")
	errDocumentNotConfigured = errors.New("document service not configured")
	errIndexNotConfigured    = errors.New("index service not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
)

// userError replaces an error's message while keeping it matchable with errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }

func (e *userError) Unwrap() error { return e.err }

// friendly maps domain errors to messages for the terminal.
func friendly(err error) error {
	if err == nil {
		return nil
	}

	var msg string
	switch {
	case errors.Is(err, domain.ErrNotReady):
		msg = "document is still processing, try again later"
	case errors.Is(err, domain.ErrNoRelevantContent):
		msg = "no relevant content found in this document"
	case errors.Is(err, domain.ErrNotFound):
		msg = "document not found"
	case errors.Is(err, domain.ErrUnsupportedType):
		msg = "unsupported file type (allowed: " + allowedTypes() + ")"
	case errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrTranscriptionUnavailable):
		return err
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		msg = "model service unavailable, try again later: " + err.Error()
	default:
		return err
	}
	return &userError{msg: msg, err: err}
}

func allowedTypes() string {
	types := domain.AllMediaTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
