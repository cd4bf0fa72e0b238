// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewDocuments lists the ingested documents.
	ViewDocuments ViewType = iota
	// ViewChat is the question and answer view for one document.
	ViewChat
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewDocuments:
		return "documents"
	case ViewChat:
		return "chat"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the list of documents from the service.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentSelected signals a document was chosen for chat.
type DocumentSelected struct {
	Document domain.Document
}

// DocumentDeleted signals a document was removed.
type DocumentDeleted struct {
	DocumentID string
	Err        error
}

// IndexWarmed carries the result of loading a document's index.
type IndexWarmed struct {
	DocumentID string
	Info       *domain.IndexInfo
	Err        error
}

// QuestionAsked is sent when the user submits a question.
type QuestionAsked struct {
	DocumentID string
	Question   string
}

// AnswerReceived carries an answer back to the chat view.
type AnswerReceived struct {
	DocumentID string
	Question   string
	Answer     *domain.Answer
	Err        error
}
