package tui

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrDocumentsUnavailable is shown when a document is opened without a document service.
var ErrDocumentsUnavailable = errors.New("tui: document service is not available")
