// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - EmbeddingsStore: the external embeddings/search backend. Recall never
//     implements embedding or vector ranking itself; it only consumes this
//     contract (upsert, index, search, filter, delete, save).
//   - ConfigStore: application configuration.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
