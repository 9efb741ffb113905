// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RecordStore: Source of truth for ingested posts (SQLite, PostgreSQL, memory)
//   - VectorIndex: Derived nearest-neighbour index over record embeddings
//   - RecommendationCache: Key-value cache of computed recommendations
//   - EmbeddingService: Generates description embeddings (Ollama, OpenAI)
//   - PageFetcher: Retrieves title and description of a remote post
//   - ConfigStore: Application configuration
//   - MetricsRecorder: Pipeline instrumentation
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driving package
package driven
