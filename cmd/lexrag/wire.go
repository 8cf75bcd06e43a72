package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/search/bleveindex"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/services"
	"github.com/custodia-labs/lexrag/internal/logger"
	"github.com/custodia-labs/lexrag/internal/normalisers"
	"github.com/custodia-labs/lexrag/internal/normalisers/docx"
	"github.com/custodia-labs/lexrag/internal/normalisers/eml"
	"github.com/custodia-labs/lexrag/internal/normalisers/html"
	"github.com/custodia-labs/lexrag/internal/normalisers/markdown"
	"github.com/custodia-labs/lexrag/internal/normalisers/plaintext"
	"github.com/custodia-labs/lexrag/internal/postprocessors"
)

// newBootstrap returns the hook that wires every service for a command.
// configDir defaults to ~/.lexrag.
func newBootstrap(configDir string) cli.Bootstrap {
	return func(ctx context.Context, opts cli.Options) (*cli.Services, func() error, error) {
		w := &wiring{configDir: configDir, ephemeral: opts.Ephemeral}
		svc, err := w.build(ctx)
		if err != nil {
			_ = w.close()
			return nil, nil, err
		}
		return svc, w.close, nil
	}
}

// wiring holds what build opened so close can release it.
type wiring struct {
	configDir string
	ephemeral bool

	closers []func() error
}

func (w *wiring) onClose(fn func() error) {
	w.closers = append(w.closers, fn)
}

func (w *wiring) close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i]())
	}
	w.closers = nil
	return errors.Join(errs...)
}

//nolint:funlen // composition root
func (w *wiring) build(ctx context.Context) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(w.configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	configDir := filepath.Dir(configStore.Path())

	loaded, err := file.LoadEnv(file.DefaultEnvFiles(configDir)...)
	if err != nil {
		logger.Warn("%v", err)
	}
	for _, f := range loaded {
		logger.Debug("Loaded environment from %s", f)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	aiServices := ai.Init(settings)
	w.onClose(func() error { aiServices.Close(); return nil })

	embedder := services.NewResilientEmbedder(aiServices.EmbeddingService, services.EmbedderConfig{
		Dimensions: settings.Embedding.Dimensions,
	})

	var (
		docStore    driven.DocumentStore
		chunkStore  driven.ChunkStore
		vectorIndex driven.VectorIndex
	)
	if w.ephemeral {
		mem := memory.NewDocumentStore(memory.WithDimensions(embedder.Dimensions()))
		docStore, chunkStore = mem, mem
		vectorIndex = memory.NewVectorIndex(embedder.Dimensions())
		logger.Debug("Using in-memory storage")
	} else {
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		w.onClose(store.Close)
		docStore, chunkStore = store.DocumentStore(), store.ChunkStore(embedder.Dimensions())
		vectorIndex = store.VectorIndex(embedder.Dimensions())
		logger.Debug("Using database %s", store.Path())
	}

	searchEngine, err := w.openSearchEngine(ctx, settings, dataDir, chunkStore)
	if err != nil {
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(pipelineConfig(settings.Chunking))
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	normaliserRegistry := normalisers.NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		eml.New(),
	)

	retriever := services.NewRetriever(docStore, chunkStore)
	retriever.SetVectorIndex(vectorIndex, embedder)
	if searchEngine != nil {
		retriever.SetSearchEngine(searchEngine)
	}
	expander, err := file.LoadSynonymsFile(settings.Retrieval.SynonymsFile)
	if err != nil {
		logger.Warn("synonyms disabled: %v", err)
	} else if expander != nil {
		retriever.SetQueryExpander(expander)
	}

	assembler := services.NewAssembler(services.WithSnippetLength(settings.Retrieval.SnippetLength))

	chat := services.NewChatService(retriever, assembler, aiServices.LLMService)
	chat.SetRetrievalDefaults(settings.Retrieval.Limit, settings.Retrieval.Threshold)
	if prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts")); err != nil {
		logger.Warn("custom prompts disabled: %v", err)
	} else {
		chat.SetPromptStore(prompts)
	}

	documents := services.NewDocumentService(docStore, chunkStore)
	documents.SetVectorIndex(vectorIndex)

	ingest := services.NewIngestService(docStore, chunkStore, pipeline, embedder)
	ingest.SetNormalisers(normaliserRegistry)
	ingest.SetVectorIndex(vectorIndex)
	ingest.SetRateLimiter(ai.NewRateLimiter(settings.Ingest))
	if progress := cli.NewProgressBar(); progress != nil {
		ingest.SetProgressReporter(progress)
	}

	if searchEngine != nil {
		documents.SetSearchEngine(searchEngine)
		ingest.SetSearchEngine(searchEngine)
	}

	return &cli.Services{
		Retrieval: retriever,
		Assembler: assembler,
		Chat:      chat,
		Document:  documents,
		Ingest:    ingest,
		Settings:  settingsService,
		Supports:  normaliserRegistry.Supports,
	}, nil
}

// openSearchEngine returns the bleve index when it is the configured
// backend, or nil to use the chunk store's own full-text search. A newly
// created index is filled from chunks already in the store.
func (w *wiring) openSearchEngine(
	ctx context.Context, settings *domain.AppSettings, dataDir string, chunks driven.ChunkStore,
) (driven.SearchEngine, error) {
	if settings.Retrieval.Backend != domain.SearchBackendBleve {
		return nil, nil
	}

	var (
		engine *bleveindex.Engine
		err    error
	)
	if w.ephemeral {
		engine, err = bleveindex.NewInMemory()
	} else {
		engine, err = bleveindex.Open(filepath.Join(dataDir, "bleve"))
	}
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	w.onClose(engine.Close)

	if engine.Created() {
		if err := backfillSearchIndex(ctx, engine, chunks); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// backfillSearchIndex indexes every stored chunk.
func backfillSearchIndex(ctx context.Context, engine driven.SearchEngine, chunks driven.ChunkStore) error {
	stored, err := chunks.ChunksForDocuments(ctx, nil)
	if err != nil {
		return fmt.Errorf("read chunks for search index: %w", err)
	}
	for _, chunk := range stored {
		if err := engine.Index(ctx, chunk); err != nil {
			return fmt.Errorf("index chunk %s: %w", chunk.ID, err)
		}
	}
	if len(stored) > 0 {
		logger.Info("Indexed %d existing chunks for keyword search", len(stored))
	}
	return nil
}

// pipelineConfig applies chunking settings to the default pipeline.
func pipelineConfig(chunking domain.ChunkingSettings) domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()
	chunker := cfg.ProcessorConfigs["chunker"]
	if chunking.MaxChunkSize > 0 {
		chunker["max_chunk_size"] = chunking.MaxChunkSize
	}
	if chunking.MinChunkLength > 0 {
		chunker["min_chunk_length"] = chunking.MinChunkLength
	}
	return cfg
}
