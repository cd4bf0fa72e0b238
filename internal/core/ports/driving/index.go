package driving

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// IndexService exposes the per-document vector index lifecycle.
type IndexService interface {
	// Warm loads or builds the index for documentID ahead of the first question.
	Warm(ctx context.Context, documentID string) (*domain.IndexInfo, error)

	// Invalidate drops any cached index for documentID.
	Invalidate(documentID string)
}
