// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Document persistence with cascading delete
//   - ChunkStore: Chunk persistence, full-text and substring search
//   - NormaliserRegistry: Turns files into plain text
//   - PostProcessorPipeline: Turns a document into chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it every chunk gets a fallback vector and
//     retrieval skips the vector stage.
//   - VectorIndex: Cosine ranking over stored embeddings.
//   - SearchEngine: A dedicated keyword index. Without it the ChunkStore's
//     own full-text search is the primary lexical strategy.
//   - LLMService: Without it ask/chat return ErrLLMUnavailable.
//   - QueryExpander, RateLimiter, ProgressReporter.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
