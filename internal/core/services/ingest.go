package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService chunks, embeds and stores documents one chunk at a time.
// Embedding calls are paced by an injected RateLimiter.
type IngestService struct {
	docStore   driven.DocumentStore
	chunkStore driven.ChunkStore
	pipeline   driven.PostProcessorPipeline
	embedder   *ResilientEmbedder

	normalisers  driven.NormaliserRegistry
	limiter      driven.RateLimiter
	vectorIndex  driven.VectorIndex
	searchEngine driven.SearchEngine
	progress     driven.ProgressReporter

	now func() time.Time
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	docStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	pipeline driven.PostProcessorPipeline,
	embedder *ResilientEmbedder,
) *IngestService {
	return &IngestService{
		docStore:   docStore,
		chunkStore: chunkStore,
		pipeline:   pipeline,
		embedder:   embedder,
		now:        time.Now,
	}
}

// SetNormalisers enables IngestFile and IngestGlob.
func (s *IngestService) SetNormalisers(registry driven.NormaliserRegistry) {
	s.normalisers = registry
}

// SetRateLimiter paces embedding calls. nil disables pacing.
func (s *IngestService) SetRateLimiter(limiter driven.RateLimiter) {
	s.limiter = limiter
}

// SetVectorIndex makes ingestion add real embeddings to the index.
func (s *IngestService) SetVectorIndex(index driven.VectorIndex) {
	s.vectorIndex = index
}

// SetSearchEngine makes ingestion index chunks for keyword search.
func (s *IngestService) SetSearchEngine(engine driven.SearchEngine) {
	s.searchEngine = engine
}

// SetProgressReporter receives per-file progress from IngestGlob.
func (s *IngestService) SetProgressReporter(p driven.ProgressReporter) {
	s.progress = p
}

// ProcessDocumentText chunks text for an existing document and stores each
// chunk with its embedding, replacing any chunks from an earlier run. When
// text is empty the document's stored content is used. A chunk that fails
// to persist is logged and counted; the run continues and the document may
// have gaps in its positions.
func (s *IngestService) ProcessDocumentText(
	ctx context.Context, docID, text string, tags []string,
) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	start := s.now()

	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", docID, err)
	}

	if text != "" && text != doc.Content {
		doc.Content = text
		doc.UpdatedAt = s.now()
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("saving document content: %w", err)
		}
	}

	work := *doc
	work.Metadata = copyMetadata(doc.Metadata)
	if len(tags) > 0 {
		work.Metadata[domain.MetaTags] = tags
	}

	chunks, err := s.pipeline.Process(ctx, &work)
	if err != nil {
		return nil, fmt.Errorf("chunking document %s: %w", docID, err)
	}
	logger.Debug("Document %s: %d chunks", docID, len(chunks))

	if err := s.purgeChunks(ctx, docID); err != nil {
		return nil, err
	}

	report := &domain.IngestReport{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Chunks:     len(chunks),
	}

	for i := range chunks {
		if err := s.wait(ctx); err != nil {
			report.Duration = s.now().Sub(start)
			return report, err
		}
		if s.storeChunk(ctx, &chunks[i], report) {
			report.Stored++
		} else {
			report.Failed++
		}
	}

	report.Duration = s.now().Sub(start)
	logger.Info("Ingested %s: %d/%d stored, %d degraded, %d failed",
		doc.ID, report.Stored, report.Chunks, report.Degraded, report.Failed)
	return report, nil
}

// storeChunk embeds and persists one chunk. Index failures are logged but
// do not count as a failed chunk; the chunk store is the source of truth.
func (s *IngestService) storeChunk(ctx context.Context, chunk *domain.Chunk, report *domain.IngestReport) bool {
	emb := s.embedder.Embed(ctx, chunk.Content)
	chunk.Embedding = emb.Vector
	if chunk.Metadata == nil {
		chunk.Metadata = make(map[string]any)
	}
	chunk.Metadata[domain.MetaEmbeddingDegraded] = emb.Degraded
	if emb.Degraded {
		report.Degraded++
	}

	if err := s.chunkStore.InsertChunk(ctx, *chunk); err != nil {
		logger.Warn("chunk %d of %s not stored: %v", chunk.Position, chunk.DocumentID, err)
		return false
	}

	if s.vectorIndex != nil && !emb.Degraded {
		if err := s.vectorIndex.Add(ctx, chunk.ID, chunk.DocumentID, chunk.Embedding); err != nil {
			logger.Warn("chunk %s not added to vector index: %v", chunk.ID, err)
		}
	}
	if s.searchEngine != nil {
		if err := s.searchEngine.Index(ctx, *chunk); err != nil {
			logger.Warn("chunk %s not added to search index: %v", chunk.ID, err)
		}
	}
	return true
}

func (s *IngestService) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// IngestFile normalises a file and ingests it as a document. Re-ingesting
// the same path replaces the earlier document's chunks and keeps its ID.
func (s *IngestService) IngestFile(
	ctx context.Context, path string, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	if s.normalisers == nil {
		return nil, fmt.Errorf("%w: no normalisers configured", domain.ErrUnsupportedFormat)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	result, err := s.normalisers.Normalise(ctx, abs, data)
	if err != nil {
		return nil, fmt.Errorf("normalising %s: %w", path, err)
	}

	doc, err := s.upsertDocument(ctx, abs, result, opts)
	if err != nil {
		return nil, err
	}

	return s.ProcessDocumentText(ctx, doc.ID, "", opts.Tags)
}

func (s *IngestService) upsertDocument(
	ctx context.Context, uri string, result *driven.NormaliseResult, opts domain.IngestOptions,
) (*domain.Document, error) {
	now := s.now()
	title := opts.Title
	if title == "" {
		title = result.Title
	}

	doc, err := s.docStore.GetDocumentByURI(ctx, uri)
	switch {
	case err == nil:
		logger.Debug("Re-ingesting %s as %s", uri, doc.ID)
	case errors.Is(err, domain.ErrNotFound):
		doc = &domain.Document{
			ID:        newID(),
			URI:       uri,
			CreatedAt: now,
		}
	default:
		return nil, fmt.Errorf("looking up %s: %w", uri, err)
	}

	doc.Title = title
	doc.Content = result.Content
	doc.Visibility = opts.Visibility.OrDefault()
	doc.UpdatedAt = now
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	for k, v := range result.Metadata {
		doc.Metadata[k] = v
	}
	doc.Metadata["format"] = result.Format
	if len(opts.Tags) > 0 {
		doc.Metadata[domain.MetaTags] = opts.Tags
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	return doc, nil
}

func (s *IngestService) purgeChunks(ctx context.Context, docID string) error {
	if err := s.chunkStore.DeleteChunksForDocument(ctx, docID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}
	if s.vectorIndex != nil {
		if err := s.vectorIndex.DeleteDocument(ctx, docID); err != nil {
			logger.Warn("old vectors of %s not removed: %v", docID, err)
		}
	}
	if s.searchEngine != nil {
		if err := s.searchEngine.DeleteDocument(ctx, docID); err != nil {
			logger.Warn("old index entries of %s not removed: %v", docID, err)
		}
	}
	return nil
}

// IngestGlob ingests every supported file matching pattern. A directory is
// treated as dir/**/*. Files that fail are logged and skipped.
func (s *IngestService) IngestGlob(
	ctx context.Context, pattern string, opts domain.IngestOptions,
) ([]domain.IngestReport, error) {
	if s.normalisers == nil {
		return nil, fmt.Errorf("%w: no normalisers configured", domain.ErrUnsupportedFormat)
	}

	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		pattern = filepath.ToSlash(filepath.Join(pattern, "**", "*"))
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", domain.ErrInvalidInput, pattern, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() || !s.normalisers.Supports(m) {
			continue
		}
		files = append(files, m)
	}
	logger.Debug("Pattern %q: %d supported files of %d matches", pattern, len(files), len(matches))

	if s.progress != nil {
		s.progress.Start(len(files))
		defer s.progress.Finish()
	}

	reports := make([]domain.IngestReport, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		fileOpts := opts
		if len(files) > 1 {
			// A title override only makes sense for a single file.
			fileOpts.Title = ""
		}
		report, err := s.IngestFile(ctx, f, fileOpts)
		if err != nil {
			logger.Warn("skipping %s: %v", f, err)
		} else {
			reports = append(reports, *report)
		}
		if s.progress != nil {
			s.progress.Increment()
		}
	}
	return reports, nil
}

func copyMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
