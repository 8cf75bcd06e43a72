package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

const chunkColumns = "c.id, c.document_id, c.content, c.position, c.embedding, c.metadata"

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
	dims  int
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// InsertChunk stores one chunk. It fails with domain.ErrNotFound when the
// document does not exist and with domain.ErrDimensionMismatch when the
// embedding has the wrong length.
func (s *chunkStore) InsertChunk(ctx context.Context, chunk domain.Chunk) error {
	if s.dims > 0 && len(chunk.Embedding) > 0 && len(chunk.Embedding) != s.dims {
		return fmt.Errorf("chunk %s: %w: got %d, want %d",
			chunk.ID, domain.ErrDimensionMismatch, len(chunk.Embedding), s.dims)
	}
	metadata, err := marshalMetadata(chunk.Metadata)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chunks (id, document_id, content, position, embedding, metadata)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM documents WHERE id = ?)
	`, chunk.ID, chunk.DocumentID, chunk.Content, chunk.Position,
		float32SliceToBytes(chunk.Embedding), metadata, chunk.DocumentID)
	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %s: %w", chunk.DocumentID, domain.ErrNotFound)
	}
	return nil
}

// FullTextSearch runs an FTS5 query ranked by bm25.
func (s *chunkStore) FullTextSearch(
	ctx context.Context, query string, docIDs []string, limit int,
) ([]driven.ChunkHit, error) {
	match := ftsMatch(domain.ParseKeywordQuery(query))
	if match == "" {
		return []driven.ChunkHit{}, nil
	}

	var b strings.Builder
	b.WriteString("SELECT " + chunkColumns + `, bm25(chunks_fts)
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		WHERE chunks_fts MATCH ?`)
	args := []any{match}
	args = appendDocFilter(&b, args, docIDs)
	b.WriteString(" ORDER BY bm25(chunks_fts) LIMIT ?")
	args = append(args, limitArg(limit))

	rows, err := s.store.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("full-text query: %w", err)
	}
	defer rows.Close()

	hits := make([]driven.ChunkHit, 0)
	for rows.Next() {
		var rank float64
		chunk, err := scanChunk(rows, &rank)
		if err != nil {
			return nil, err
		}
		// bm25 is negative; more negative is more relevant.
		hits = append(hits, driven.ChunkHit{Chunk: *chunk, Score: -rank})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating full-text hits: %w", err)
	}
	return hits, nil
}

// SubstringSearch finds chunks containing needle. LIKE folds ASCII case only.
func (s *chunkStore) SubstringSearch(
	ctx context.Context, needle string, docIDs []string, limit int,
) ([]driven.ChunkHit, error) {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return []driven.ChunkHit{}, nil
	}

	var b strings.Builder
	b.WriteString("SELECT " + chunkColumns + ` FROM chunks c WHERE c.content LIKE ? ESCAPE '\'`)
	args := []any{likePattern(needle)}
	args = appendDocFilter(&b, args, docIDs)
	b.WriteString(" ORDER BY c.rowid LIMIT ?")
	args = append(args, limitArg(limit))

	rows, err := s.store.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("substring query: %w", err)
	}
	defer rows.Close()

	chunks, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}
	hits := make([]driven.ChunkHit, 0, len(chunks))
	for _, c := range chunks {
		hits = append(hits, driven.ChunkHit{Chunk: c})
	}
	return hits, nil
}

// GetChunks returns the chunks that exist among ids.
func (s *chunkStore) GetChunks(ctx context.Context, ids []string) ([]domain.Chunk, error) {
	if len(ids) == 0 {
		return []domain.Chunk{}, nil
	}
	placeholders, args := inClause(ids)
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks c WHERE c.id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ChunksForDocuments returns chunks ordered by document then position.
func (s *chunkStore) ChunksForDocuments(ctx context.Context, docIDs []string) ([]domain.Chunk, error) {
	var b strings.Builder
	b.WriteString("SELECT " + chunkColumns + " FROM chunks c WHERE 1 = 1")
	args := appendDocFilter(&b, nil, docIDs)
	b.WriteString(" ORDER BY c.document_id, c.position")

	rows, err := s.store.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// DeleteChunksForDocument removes all chunks of a document.
func (s *chunkStore) DeleteChunksForDocument(ctx context.Context, docID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", docID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

func appendDocFilter(b *strings.Builder, args []any, docIDs []string) []any {
	if len(docIDs) == 0 {
		return args
	}
	placeholders, ids := inClause(docIDs)
	b.WriteString(" AND c.document_id IN (" + placeholders + ")")
	return append(args, ids...)
}

// limitArg maps a non-positive limit to SQLite's "no limit".
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// scanChunk scans a chunk plus any extra trailing columns.
func scanChunk(row rowScanner, extra ...any) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadata sql.NullString

	dest := append([]any{&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&chunk.Position, &embeddingBlob, &metadata}, extra...)
	if err := row.Scan(dest...); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	m, err := unmarshalMetadata(metadata)
	if err != nil {
		return nil, err
	}
	chunk.Metadata = m
	return &chunk, nil
}

func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, 0)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}
