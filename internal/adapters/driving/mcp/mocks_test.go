package mcp

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer       *domain.Answer
	err          error
	lastDocument string
	lastQuestion string
}

func (m *mockQueryService) Answer(_ context.Context, documentID, question string) (*domain.Answer, error) {
	m.lastDocument = documentID
	m.lastQuestion = question
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	chunks    []domain.Chunk
	err       error
	lastUser  string
}

func (m *mockDocumentService) List(_ context.Context, userID string) ([]domain.Document, error) {
	m.lastUser = userID
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	document    *domain.Document
	result      *domain.ProcessResult
	registerErr error
	processErr  error
}

func (m *mockIngestService) Register(_ context.Context, _, _ string) (*domain.Document, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.document, nil
}

func (m *mockIngestService) Process(_ context.Context, _ string) (*domain.ProcessResult, error) {
	return m.result, m.processErr
}
