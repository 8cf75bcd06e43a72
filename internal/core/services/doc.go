// Package services holds the retrieval pipeline: the resilient embedder,
// ingestion, the retriever cascade, context assembly, chat, and the
// document and settings services. Each service is built from driven
// ports and exposes a driving port.
package services
