package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	DocumentID string `json:"document_id" jsonschema:"the id of the document to ask about"`
	Question   string `json:"question" jsonschema:"the question to answer from the document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string            `json:"answer"`
	Sources []domain.TimeSpan `json:"sources"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"only list documents owned by this user"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single document.
type DocumentOutput struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	CreatedAt string `json:"created_at"`
}

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Path   string `json:"path" jsonschema:"absolute path of a pdf, mp3, wav or mp4 file"`
	UserID string `json:"user_id,omitempty" jsonschema:"owner of the new document"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the content of one uploaded document",
	}, s.handleAsk)

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List uploaded documents, newest first",
		}, s.handleListDocuments)
	}

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_document",
			Description: "Upload a local file and index it for questions",
		}, s.handleIngest)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Answer(ctx, input.DocumentID, input.Question)
	if err != nil {
		if errors.Is(err, domain.ErrNotReady) {
			return nil, AskOutput{}, errors.New("document is still processing, try again later")
		}
		return nil, AskOutput{}, err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.TimeSpan{}
	}
	return nil, AskOutput{Answer: answer.Text, Sources: sources}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx, input.UserID)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}
	return nil, output, nil
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	doc, err := s.ports.Ingest.Register(ctx, input.UserID, input.Path)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	result, err := s.ports.Ingest.Process(ctx, doc.ID)
	if err != nil {
		return nil, IngestOutput{DocumentID: doc.ID}, err
	}
	return nil, IngestOutput{DocumentID: doc.ID, Chunks: result.Chunks}, nil
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Filename:  doc.Filename,
		MediaType: doc.MediaType.String(),
		CreatedAt: doc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
