package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query       string   `json:"query" jsonschema:"the question or keywords to search for"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict results to these document IDs"`
	Threshold   float64  `json:"threshold,omitempty" jsonschema:"minimum vector similarity between 0 and 1"`
	Limit       int      `json:"limit,omitempty" jsonschema:"maximum number of results (default 5, max 50)"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
	ScoreKind  string  `json:"score_kind"`
	Content    string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question    string   `json:"question" jsonschema:"the question to answer from the documents"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict grounding to these document IDs"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string         `json:"answer"`
	Grounded bool           `json:"grounded"`
	Sources  []SourceOutput `json:"sources"`
}

// SourceOutput is one numbered citation.
type SourceOutput struct {
	Index      int     `json:"index"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	ScoreKind  string  `json:"score_kind"`
	Snippet    string  `json:"snippet"`
}

// ListDocumentsInput is empty; the tool takes no arguments.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

// DocumentSummary describes a document without its text.
type DocumentSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
	URI        string `json:"uri,omitempty"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	ID string `json:"id" jsonschema:"the document ID"`
}

// GetDocumentOutput is a document with its chunks in reading order.
type GetDocumentOutput struct {
	Document DocumentSummary `json:"document"`
	Content  string          `json:"content"`
	Chunks   []ChunkOutput   `json:"chunks"`
}

// ChunkOutput is one stored chunk.
type ChunkOutput struct {
	ID       string   `json:"id"`
	Position int      `json:"position"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
	Degraded bool     `json:"degraded,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_documents",
		Description: "Find passages in the user's legal documents. Supports \"exact phrases\", " +
			"OR between alternatives and -word exclusions. Each result says whether it was " +
			"scored by vector, lexical or substring matching.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the user's documents with numbered citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested documents with their IDs, titles and visibility",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Read a document and its chunks by ID",
	}, s.handleGetDocument)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results := s.ports.Retrieval.Search(ctx, domain.RetrievalQuery{
		Text:        input.Query,
		DocumentIDs: input.DocumentIDs,
		Threshold:   input.Threshold,
		Limit:       input.Limit,
	})
	logger.Debug("mcp search_documents %q: %d results", input.Query, len(results))

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID:    results[i].ChunkID,
			DocumentID: results[i].DocumentID,
			Title:      results[i].DocumentTitle,
			Position:   results[i].Position,
			Score:      results[i].Score,
			ScoreKind:  string(results[i].ScoreKind),
			Content:    results[i].Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Chat == nil {
		return nil, AskOutput{}, toolError("ask", errNotAvailable)
	}

	answer, err := s.ports.Chat.Ask(ctx, input.Question, nil, input.DocumentIDs)
	if err != nil {
		return nil, AskOutput{}, toolError("ask", err)
	}

	output := AskOutput{
		Answer:   answer.Answer,
		Grounded: answer.Grounded,
		Sources:  make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{
			Index:      src.Index,
			DocumentID: src.DocumentID,
			Title:      src.DocumentTitle,
			Score:      src.Score,
			ScoreKind:  string(src.ScoreKind),
			Snippet:    src.Snippet,
		}
	}
	return nil, output, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, toolError("list_documents", errNotAvailable)
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError("list_documents", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentSummary, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = summarise(&docs[i])
	}
	return nil, output, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	if s.ports.Document == nil {
		return nil, GetDocumentOutput{}, toolError("get_document", errNotAvailable)
	}

	doc, err := s.ports.Document.Get(ctx, input.ID)
	if err != nil {
		return nil, GetDocumentOutput{}, toolError("get_document", err)
	}
	chunks, err := s.ports.Document.Chunks(ctx, doc.ID)
	if err != nil {
		return nil, GetDocumentOutput{}, toolError("get_document", err)
	}

	output := GetDocumentOutput{
		Document: summarise(doc),
		Content:  doc.Content,
		Chunks:   make([]ChunkOutput, len(chunks)),
	}
	for i := range chunks {
		output.Chunks[i] = ChunkOutput{
			ID:       chunks[i].ID,
			Position: chunks[i].Position,
			Content:  chunks[i].Content,
			Tags:     chunks[i].Tags(),
			Degraded: chunks[i].IsDegraded(),
		}
	}
	return nil, output, nil
}

func summarise(doc *domain.Document) DocumentSummary {
	return DocumentSummary{
		ID:         doc.ID,
		Title:      doc.Title,
		Visibility: string(doc.Visibility),
		URI:        doc.URI,
	}
}
