// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document persistence
//   - ChunkStore: Chunk and embedding persistence
//   - VectorIndexFactory: Builds an in-memory VectorIndex per document
//   - Chunker: Splits extracted text into chunk contents
//   - UploadStore: Holds uploaded files
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, documents cannot be indexed.
//   - LLMService: Answers questions. Without it, retrieval works but no answer is produced.
//   - TextExtractor: Extracts text from PDFs.
//   - Transcriber: Converts audio and video into timestamped segments.
//   - Observer: Receives index and query events for metrics.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or postprocessor package
package driven
