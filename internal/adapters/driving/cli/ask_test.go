package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

func TestAskCmd_RequiresDocumentAndQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask", "doc-1")

	assert.Error(t, err)
}

func TestAskCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute(t, "ask", "doc-1", "what?")

	assert.ErrorIs(t, err, errQueryNotConfigured)
}

func TestAskCmd_JoinsQuestionWords(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var gotDoc, gotQuestion string
	ts.query.answerFunc = func(_ context.Context, documentID, question string) (*domain.Answer, error) {
		gotDoc, gotQuestion = documentID, question
		return &domain.Answer{Text: "ok"}, nil
	}

	_, err := execute(t, "ask", "doc-9", "how", "often", "are", "backups?")

	require.NoError(t, err)
	assert.Equal(t, "doc-9", gotDoc)
	assert.Equal(t, "how often are backups?", gotQuestion)
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "doc-1", "backups?")

	require.NoError(t, err)
	assert.Contains(t, out, "The speaker recommends weekly backups.")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "  00:12-00:30")
	assert.Contains(t, out, "  01:15-01:30")
}

func TestAskCmd_NoSourcesForText(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.query.answerFunc = func(context.Context, string, string) (*domain.Answer, error) {
		return &domain.Answer{Text: "Revenue grew 12%."}, nil
	}

	out, err := execute(t, "ask", "doc-1", "revenue?")

	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12%.\n", out)
}

func TestAskCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--json", "doc-1", "backups?")
	require.NoError(t, err)

	var got struct {
		Answer  string            `json:"answer"`
		Sources []domain.TimeSpan `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "The speaker recommends weekly backups.", got.Answer)
	assert.Len(t, got.Sources, 2)
	assert.InDelta(t, 30.5, got.Sources[0].End, 0.001)
}

func TestAskCmd_JSONEmptySources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.query.answerFunc = func(context.Context, string, string) (*domain.Answer, error) {
		return &domain.Answer{Text: "Revenue grew."}, nil
	}

	out, err := execute(t, "ask", "--json", "doc-1", "revenue?")

	require.NoError(t, err)
	assert.Contains(t, out, `"sources": []`)
}

func TestAskCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"not ready", domain.ErrNotReady, "document is still processing, try again later"},
		{"no content", domain.ErrNoRelevantContent, "no relevant content found in this document"},
		{"not found", fmt.Errorf("document doc-1: %w", domain.ErrNotFound), "document not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()

			ts.query.answerFunc = func(context.Context, string, string) (*domain.Answer, error) {
				return nil, tt.err
			}

			_, err := execute(t, "ask", "doc-1", "anything")

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFormatSpan(t *testing.T) {
	tests := []struct {
		span domain.TimeSpan
		want string
	}{
		{domain.TimeSpan{Start: 0, End: 4.9}, "00:00-00:04"},
		{domain.TimeSpan{Start: 61, End: 125.5}, "01:01-02:05"},
		{domain.TimeSpan{Start: 3600, End: 3661}, "60:00-61:01"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSpan(tt.span))
		})
	}
}
