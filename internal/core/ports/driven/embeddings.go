package driven

import (
	"context"

	"github.com/recall-labs/recall/internal/core/domain"
)

// EmbeddingsStore is the consumed contract of the external embeddings and
// search backend. Adapters wrap concrete backends (in-memory, SQLite,
// remote vector services); services never depend on a particular one.
type EmbeddingsStore interface {
	// Upsert inserts or replaces records by id.
	Upsert(ctx context.Context, records []domain.Record) error

	// Index bulk-inserts records. Used for initial loads where backends
	// without upsert support can still ingest.
	Index(ctx context.Context, records []domain.Record) error

	// Get retrieves a single record by id. Returns domain.ErrNotFound
	// when the id is absent.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// Search runs a natural-language similarity query.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredRecord, error)

	// Filter returns records matching a structured metadata filter.
	Filter(ctx context.Context, f domain.Filter) ([]domain.Record, error)

	// Delete removes records by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Save persists the index to the given path. Backends that persist
	// continuously may treat this as a checkpoint.
	Save(ctx context.Context, path string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
