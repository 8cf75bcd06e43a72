// Package mcp provides an MCP (Model Context Protocol) server adapter for lexrag.
// It lets AI assistants search ingested legal documents and ask grounded
// questions about them.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// errNotAvailable is returned by tools whose service was not wired.
var errNotAvailable = errors.New("tool not available in this configuration")

// toolError rewrites core errors into messages an assistant can act on.
// The original error stays wrapped.
func toolError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%s: no such document: %w", op, err)
	case errors.Is(err, domain.ErrInvalidInput):
		return fmt.Errorf("%s: invalid arguments: %w", op, err)
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Errorf("%s: no language model is configured; use search_documents instead: %w", op, err)
	case errors.Is(err, domain.ErrRateLimited):
		return fmt.Errorf("%s: provider rate limit reached, retry later: %w", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
