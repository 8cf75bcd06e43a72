package mcp

import (
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval finds relevant chunks. Required.
	Retrieval driving.RetrievalService

	// Chat answers grounded questions. Optional: without it the ask tool
	// reports that it is unavailable.
	Chat driving.ChatService

	// Document lists and reads documents. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
