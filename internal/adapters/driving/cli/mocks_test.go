package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

type mockRetrievalService struct {
	results   []domain.RetrievalResult
	lastQuery domain.RetrievalQuery
}

func (m *mockRetrievalService) Search(_ context.Context, q domain.RetrievalQuery) []domain.RetrievalResult {
	m.lastQuery = q
	return m.results
}

type mockAssembler struct{}

func (m *mockAssembler) Assemble(results []domain.RetrievalResult) domain.AssembledContext {
	out := domain.AssembledContext{}
	for i, r := range results {
		out.Text += "[" + r.DocumentTitle + "]\n" + r.Content + "\n"
		out.Sources = append(out.Sources, domain.Source{Index: i + 1, DocumentID: r.DocumentID, DocumentTitle: r.DocumentTitle})
	}
	return out
}

type mockChatService struct {
	answer   *domain.ChatAnswer
	err      error
	question string
	docIDs   []string
}

func (m *mockChatService) Ask(
	_ context.Context, question string, _ []domain.ChatMessage, docIDs []string,
) (*domain.ChatAnswer, error) {
	m.question = question
	m.docIDs = docIDs
	return m.answer, m.err
}

type mockDocumentService struct {
	docs    []domain.Document
	chunks  []domain.Chunk
	err     error
	created []domain.Document
	deleted []string
}

func (m *mockDocumentService) Create(_ context.Context, doc domain.Document) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc.ID = "doc-new"
	m.created = append(m.created, doc)
	return &doc, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockIngestService struct {
	processed []string
	files     []string
	patterns  []string
	opts      domain.IngestOptions
	report    domain.IngestReport
	globHits  int
	err       error
}

func (m *mockIngestService) ProcessDocumentText(
	_ context.Context, docID, _ string, tags []string,
) (*domain.IngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.processed = append(m.processed, docID)
	m.opts.Tags = tags
	r := m.report
	r.DocumentID = docID
	return &r, nil
}

func (m *mockIngestService) IngestFile(
	_ context.Context, path string, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.files = append(m.files, path)
	m.opts = opts
	r := m.report
	r.DocumentID = "doc-" + path
	return &r, nil
}

func (m *mockIngestService) IngestGlob(
	_ context.Context, pattern string, opts domain.IngestOptions,
) ([]domain.IngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.patterns = append(m.patterns, pattern)
	m.opts = opts
	reports := make([]domain.IngestReport, m.globHits)
	for i := range reports {
		reports[i] = m.report
	}
	return reports, nil
}

type mockSettingsService struct {
	settings       domain.AppSettings
	saved          *domain.AppSettings
	embedProvider  domain.AIProvider
	embedModel     string
	llmProvider    domain.AIProvider
	llmModel       string
	validateErr    error
	providerErr    error
	validateLLMErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.saved = settings
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string) error {
	if m.providerErr != nil {
		return m.providerErr
	}
	m.embedProvider = provider
	m.embedModel = model
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model string) error {
	if m.providerErr != nil {
		return m.providerErr
	}
	m.llmProvider = provider
	m.llmModel = model
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.validateLLMErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	retrieval *mockRetrievalService
	chat      *mockChatService
	document  *mockDocumentService
	ingest    *mockIngestService
	settings  *mockSettingsService
}

var testCreated = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// setupTestServices installs mocks with a small legal corpus and returns
// them with a cleanup that clears the services again.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		retrieval: &mockRetrievalService{results: []domain.RetrievalResult{
			{
				ChunkID: "c-1", DocumentID: "doc-1", DocumentTitle: "Master Services Agreement",
				Content: "Either party may terminate\nfor material breach.", Position: 3,
				Score: 0.87, ScoreKind: domain.ScoreKindVector,
			},
			{
				ChunkID: "c-2", DocumentID: "doc-2", Content: "Termination for convenience.",
				Score: domain.SentinelScore, ScoreKind: domain.ScoreKindLexical,
			},
		}},
		chat: &mockChatService{answer: &domain.ChatAnswer{
			Answer:   "Either party may terminate for material breach [1].",
			Grounded: true,
			Sources: []domain.Source{{
				Index: 1, DocumentID: "doc-1", DocumentTitle: "Master Services Agreement",
				Score: 0.87, ScoreKind: domain.ScoreKindVector, Snippet: "Either party may terminate",
			}},
		}},
		document: &mockDocumentService{
			docs: []domain.Document{{
				ID: "doc-1", Title: "Master Services Agreement", Content: "Full agreement text.",
				Visibility: domain.VisibilityShared, URI: "/contracts/msa.docx",
				Metadata:  map[string]any{"format": "docx"},
				CreatedAt: testCreated, UpdatedAt: testCreated,
			}},
			chunks: []domain.Chunk{
				{ID: "c-0", DocumentID: "doc-1", Position: 0, Content: "Definitions",
					Metadata: map[string]any{domain.MetaTags: []string{"msa"}}},
				{ID: "c-1", DocumentID: "doc-1", Position: 1, Content: "Termination",
					Metadata: map[string]any{domain.MetaEmbeddingDegraded: true}},
			},
		},
		ingest: &mockIngestService{
			report:   domain.IngestReport{Title: "msa", Chunks: 3, Stored: 3, Duration: 120 * time.Millisecond},
			globHits: 2,
		},
		settings: newMockSettingsService(),
	}

	SetServices(&Services{
		Retrieval: ts.retrieval,
		Assembler: &mockAssembler{},
		Chat:      ts.chat,
		Document:  ts.document,
		Ingest:    ts.ingest,
		Settings:  ts.settings,
	})
	return ts, func() { SetServices(nil) }
}
