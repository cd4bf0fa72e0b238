package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

func TestDocumentCmd_Subcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range documentCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"list", "show", "chunks", "delete"}, names)
}

func TestDocumentList_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute(t, "document", "list")

	assert.ErrorIs(t, err, errDocumentNotConfigured)
}

func TestDocumentList_PrintsDocuments(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents:")
	assert.Contains(t, out, "  doc-1")
	assert.Contains(t, out, "    File: report.pdf (pdf)")
	assert.Contains(t, out, "    User: bob")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestDocumentList_FiltersByUser(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var gotUser string
	ts.document.listFunc = func(_ context.Context, userID string) ([]domain.Document, error) {
		gotUser = userID
		return nil, nil
	}

	out, err := execute(t, "document", "list", "--user", "alice")

	require.NoError(t, err)
	assert.Equal(t, "alice", gotUser)
	assert.Contains(t, out, "No documents found.")
}

func TestDocumentList_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.document.listFunc = func(context.Context, string) ([]domain.Document, error) {
		return nil, errors.New("database locked")
	}

	_, err := execute(t, "document", "list")

	assert.EqualError(t, err, "database locked")
}

func TestDocumentShow(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "show", "doc-2")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-2")
	assert.Contains(t, out, "  File:     standup.mp3")
	assert.Contains(t, out, "  Type:     mp3")
	assert.Contains(t, out, "  Created:  2026-01-02 03:04:05")
	assert.Contains(t, out, "  Chunks:   2")
	assert.Contains(t, out, "  Embedded: 1")
	assert.NotContains(t, out, "Not processed yet")
}

func TestDocumentShow_Unprocessed(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.document.chunksFunc = func(context.Context, string) ([]domain.Chunk, error) {
		return nil, nil
	}

	out, err := execute(t, "document", "show", "doc-2")

	require.NoError(t, err)
	assert.Contains(t, out, "  Chunks:   0")
	assert.Contains(t, out, "Not processed yet")
}

func TestDocumentShow_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.document.getFunc = func(context.Context, string) (*domain.Document, error) {
		return nil, domain.ErrNotFound
	}

	_, err := execute(t, "document", "show", "missing")

	require.Error(t, err)
	assert.Equal(t, "document not found", err.Error())
}

func TestDocumentShow_RequiresID(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "document", "show")

	assert.Error(t, err)
}

func TestDocumentChunks(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "chunks", "doc-2")

	require.NoError(t, err)
	assert.Contains(t, out, "[0] 00:00-00:04\ngood morning")
	assert.Contains(t, out, "[1] 00:04-01:05\nbackups weekly")
}

func TestDocumentChunks_TextHasNoSpan(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.document.chunksFunc = func(_ context.Context, id string) ([]domain.Chunk, error) {
		return []domain.Chunk{{ID: "c1", DocumentID: id, Content: "Quarterly revenue", Position: 0}}, nil
	}

	out, err := execute(t, "document", "chunks", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "[0]\nQuarterly revenue\n\n", out)
}

func TestDocumentChunks_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.document.chunksFunc = func(context.Context, string) ([]domain.Chunk, error) {
		return []domain.Chunk{}, nil
	}

	out, err := execute(t, "document", "chunks", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "No chunks found.")
}

func TestDocumentDelete(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var deleted string
	ts.document.deleteFunc = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}

	out, err := execute(t, "document", "delete", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "doc-1", deleted)
	assert.Contains(t, out, "Document doc-1 deleted.")
}

func TestDocumentDelete_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.document.deleteFunc = func(context.Context, string) error {
		return domain.ErrNotFound
	}

	out, err := execute(t, "document", "delete", "doc-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, out, "deleted.")
}

func TestCountEmbedded(t *testing.T) {
	chunks := []domain.Chunk{
		{Embedding: []float32{1}},
		{},
		{Embedding: []float32{0.5, 0.5}},
	}

	assert.Equal(t, 2, countEmbedded(chunks))
	assert.Equal(t, 0, countEmbedded(nil))
}
