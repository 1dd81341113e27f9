// Package domain defines the core business entities for Recall.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: The unit of storage (id, text, metadata) fed to the
//     embeddings store
//   - ScoredRecord: A record with a similarity score
//   - Filter: Structured metadata filtering for recall queries
//   - Period: A parsed time window for temporal recall
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
