package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

func TestIngestCmd_Flags(t *testing.T) {
	user := ingestCmd.Flags().Lookup("user")
	require.NotNil(t, user)
	assert.Equal(t, "u", user.Shorthand)
	assert.Equal(t, "local", user.DefValue)

	assert.NotNil(t, ingestCmd.Flags().Lookup("no-process"))
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ingest")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute(t, "ingest", "report.pdf")

	assert.ErrorIs(t, err, errIngestNotConfigured)
}

func TestIngestCmd_RegistersAndProcesses(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var gotUser string
	ts.ingest.registerFunc = func(_ context.Context, userID, path string) (*domain.Document, error) {
		gotUser = userID
		return &domain.Document{ID: "doc-" + path, Filename: path, MediaType: domain.MediaTypePDF}, nil
	}

	out, err := execute(t, "ingest", "--user", "alice", "a.pdf", "b.pdf")

	require.NoError(t, err)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ts.ingest.registered)
	assert.Equal(t, []string{"doc-a.pdf", "doc-b.pdf"}, ts.ingest.processed)
	assert.Contains(t, out, "Registered a.pdf as doc-a.pdf")
	assert.Contains(t, out, "Processed doc-b.pdf (pdf): 4 chunks")
}

func TestIngestCmd_NoProcess(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ingest", "--no-process", "report.pdf")

	require.NoError(t, err)
	assert.Len(t, ts.ingest.registered, 1)
	assert.Empty(t, ts.ingest.processed)
	assert.Contains(t, out, "Registered report.pdf as doc-1")
	assert.NotContains(t, out, "Processed")
}

func TestIngestCmd_UnsupportedType(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.registerFunc = func(context.Context, string, string) (*domain.Document, error) {
		return nil, fmt.Errorf("%w: \".txt\"", domain.ErrUnsupportedType)
	}

	_, err := execute(t, "ingest", "/tmp/notes.txt")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Equal(t, "notes.txt: unsupported file type (allowed: pdf, mp3, wav, mp4)", err.Error())
	assert.Empty(t, ts.ingest.processed)
}

func TestIngestCmd_ProcessFails(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.processFunc = func(context.Context, string) (*domain.ProcessResult, error) {
		return nil, errors.New("extract failed")
	}

	_, err := execute(t, "ingest", "report.pdf", "other.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.pdf: extract failed")
	assert.Len(t, ts.ingest.registered, 1)
}
