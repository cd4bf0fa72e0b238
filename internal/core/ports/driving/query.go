package driving

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// QueryService answers questions about a single document.
// Callers are expected to have authorised access to the document already.
type QueryService interface {
	// Answer retrieves the chunks most relevant to question and asks the
	// language model to answer from them.
	//
	// Returns domain.ErrInvalidInput for a blank question, domain.ErrNotReady
	// while the document has no chunks, domain.ErrNoRelevantContent when
	// retrieval finds nothing, and an error wrapping
	// domain.ErrUpstreamUnavailable when a remote model fails.
	Answer(ctx context.Context, documentID, question string) (*domain.Answer, error)
}
