package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(documentCmd.Commands()))
	for _, c := range documentCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "delete"}, names)
}

func TestDocumentListCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-1  Master Services Agreement [shared]")
	assert.Contains(t, out, "Total: 1 document")
}

func TestDocumentListCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.document.docs = nil

	out, err := run(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents ingested yet.")
}

func TestDocumentGetCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, "document", "get", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document Details:")
	assert.Contains(t, out, "URI:        /contracts/msa.docx")
	assert.Contains(t, out, "Format:     docx")
	assert.Contains(t, out, "Created:    2025-03-14 09:30:00")
	assert.Contains(t, out, "Chunks:     2 (1 without embedding)")
	assert.NotContains(t, out, "Full agreement text.")
}

func TestDocumentGetCmd_ChunksAndContent(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, "document", "get", "doc-1", "--chunks", "--content")

	require.NoError(t, err)
	assert.Contains(t, out, "#0 c-0 tags: msa")
	assert.Contains(t, out, "#1 c-1 tags: -")
	assert.Contains(t, out, "Full agreement text.")
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, "document", "get", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentGetCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := run(t, "document", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentDeleteCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := run(t, "document", "delete", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, ts.document.deleted)
	assert.Contains(t, out, "Document doc-1 deleted.")
}

func TestDocumentCmds_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	for _, args := range [][]string{
		{"document", "list"},
		{"document", "get", "doc-1"},
		{"document", "delete", "doc-1"},
	} {
		_, err := run(t, args...)
		assert.ErrorIs(t, err, errDocumentNotConfigured, args)
	}
}
