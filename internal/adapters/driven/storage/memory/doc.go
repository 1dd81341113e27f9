// Package memory provides in-memory implementations of driven ports.
// The embeddings store here is the reference backend: it keeps records in
// a map, scores searches by term overlap and persists snapshots as JSON.
package memory
