// Package sqlite provides a SQLite-backed embeddings store. It persists
// records durably and filters metadata; similarity scoring stays the same
// naive term overlap as the in-memory backend, since no vector engine sits
// behind it.
package sqlite
