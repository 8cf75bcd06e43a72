// Package domain defines the core business entities for lexrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested legal document with its raw text
//   - Chunk: A sentence-bounded retrieval unit within a document
//   - RetrievalQuery / RetrievalResult: The transient query-time types
//   - AssembledContext: Grounding text plus aligned source citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
