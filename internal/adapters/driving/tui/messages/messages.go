// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the grounded question-and-answer view.
	ViewChat ViewType = iota
	// ViewSearch is the retrieval input and results view.
	ViewSearch
	// ViewDocuments lists ingested documents.
	ViewDocuments
	// ViewDocument shows one document and its chunks.
	ViewDocument
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewSearch:
		return "search"
	case ViewDocuments:
		return "documents"
	case ViewDocument:
		return "document"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// AnswerReceived carries the LLM answer for one question.
type AnswerReceived struct {
	Question string
	Answer   *domain.ChatAnswer
	Err      error
}

// SearchCompleted carries retrieval results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.RetrievalResult
}

// DocumentsLoaded carries the list of documents.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentRequested asks the app to open a document.
type DocumentRequested struct {
	DocumentID string
}

// DocumentLoaded carries a document and its chunks.
type DocumentLoaded struct {
	Document *domain.Document
	Chunks   []domain.Chunk
	Err      error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
