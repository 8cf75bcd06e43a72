// Package tui provides the interactive chat interface for lexrag.
// It is a driving adapter: every view talks to core through driving ports.
package tui

import (
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Chat answers questions. Required.
	Chat driving.ChatService

	// Retrieval backs the search view. Optional.
	Retrieval driving.RetrievalService

	// Document backs the documents list and reader. Optional.
	Document driving.DocumentService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	chat driving.ChatService,
	retrieval driving.RetrievalService,
	document driving.DocumentService,
) *Ports {
	return &Ports{
		Chat:      chat,
		Retrieval: retrieval,
		Document:  document,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
