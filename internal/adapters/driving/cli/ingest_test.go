package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func TestIngestCmd_File(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "msa.md")
	require.NoError(t, os.WriteFile(path, []byte("# MSA"), 0o600))

	out, err := run(t, "ingest", path, "--title", "MSA", "--tag", "msa", "--tag", "2025", "--shared")

	require.NoError(t, err)
	assert.Equal(t, []string{path}, ts.ingest.files)
	assert.Equal(t, "MSA", ts.ingest.opts.Title)
	assert.Equal(t, domain.VisibilityShared, ts.ingest.opts.Visibility)
	assert.Equal(t, []string{"msa", "2025"}, ts.ingest.opts.Tags)
	assert.Contains(t, out, "Ingested 1 document, 3 chunks stored.")
}

func TestIngestCmd_DirectoryBecomesGlob(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	dir := t.TempDir()

	out, err := run(t, "ingest", dir)

	require.NoError(t, err)
	require.Len(t, ts.ingest.patterns, 1)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "**", "*")), ts.ingest.patterns[0])
	assert.Equal(t, domain.VisibilityPersonal, ts.ingest.opts.Visibility)
	assert.Contains(t, out, "Ingested 2 documents, 6 chunks stored.")
}

func TestIngestCmd_GlobNoMatches(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.globHits = 0

	out, err := run(t, "ingest", "contracts/**/*.docx")

	require.NoError(t, err)
	assert.Equal(t, []string{"contracts/**/*.docx"}, ts.ingest.patterns)
	assert.Contains(t, out, "No supported files matched contracts/**/*.docx")
}

func TestIngestCmd_Stdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runWithInput(t, strings.NewReader("  Side letter text.\n"), "ingest", "-", "--title", "Side letter", "--tag", "nda")

	require.NoError(t, err)
	require.Len(t, ts.document.created, 1)
	assert.Equal(t, "Side letter", ts.document.created[0].Title)
	assert.Equal(t, "Side letter text.", ts.document.created[0].Content)
	assert.Equal(t, []string{"doc-new"}, ts.ingest.processed)
	assert.Equal(t, []string{"nda"}, ts.ingest.opts.Tags)
	assert.Contains(t, out, "doc-new  Side letter")
}

func TestIngestCmd_EmptyStdin(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runWithInput(t, strings.NewReader("   "), "ingest", "-")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestCmd_TitleWithManyArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, "ingest", "a.md", "b.md", "--title", "Both")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--title applies to a single document")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, "ingest", filepath.Join(t.TempDir(), "missing.pdf"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := run(t, "ingest", "x.md")

	assert.ErrorIs(t, err, errIngestNotConfigured)
}

func TestPrintIngestSummary_Warnings(t *testing.T) {
	reports := []domain.IngestReport{
		{DocumentID: "d1", Title: "Lease", Stored: 4, Degraded: 2, Failed: 1},
	}

	out, err := runSummary(reports)

	require.NoError(t, err)
	assert.Contains(t, out, "d1  Lease")
	assert.Contains(t, out, "2 chunks stored without an embedding")
	assert.Contains(t, out, "1 chunk could not be stored")
}

func TestIsGlob(t *testing.T) {
	assert.True(t, isGlob("docs/**/*.md"))
	assert.True(t, isGlob("file?.txt"))
	assert.True(t, isGlob("{a,b}.md"))
	assert.False(t, isGlob("contracts/msa.docx"))
}
