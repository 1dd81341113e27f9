package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driven"
)

// Ensure EmbeddingsStore implements the interface.
var _ driven.EmbeddingsStore = (*EmbeddingsStore)(nil)

const defaultSearchLimit = 10

// EmbeddingsStore is an in-memory implementation of driven.EmbeddingsStore.
type EmbeddingsStore struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	order   []string
}

// NewEmbeddingsStore creates an empty in-memory store.
func NewEmbeddingsStore() *EmbeddingsStore {
	return &EmbeddingsStore{records: make(map[string]domain.Record)}
}

// Upsert inserts or replaces records by id.
func (s *EmbeddingsStore) Upsert(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if _, exists := s.records[rec.ID]; !exists {
			s.order = append(s.order, rec.ID)
		}
		s.records[rec.ID] = rec
	}
	return nil
}

// Index bulk-inserts records. In this backend it is equivalent to Upsert.
func (s *EmbeddingsStore) Index(ctx context.Context, records []domain.Record) error {
	return s.Upsert(ctx, records)
}

// Get retrieves a record by id.
func (s *EmbeddingsStore) Get(_ context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// Search scores every record against the query by term overlap and
// returns the best matches, highest score first.
func (s *EmbeddingsStore) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	prefilter := domain.Filter{
		Types:         opts.Types,
		MinImportance: opts.MinImportance,
		SessionID:     opts.SessionID,
	}

	s.mu.RLock()
	var scored []domain.ScoredRecord
	for _, id := range s.order {
		rec := s.records[id]
		if !prefilter.Empty() && !prefilter.Matches(rec) {
			continue
		}
		score := domain.ScoreOverlap(query, rec.Text)
		if score > 0 {
			scored = append(scored, domain.ScoredRecord{Record: rec, Score: score})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Filter returns records matching the structured filter, in insertion
// order unless the filter requests timestamp ordering.
func (s *EmbeddingsStore) Filter(_ context.Context, f domain.Filter) ([]domain.Record, error) {
	s.mu.RLock()
	records := make([]domain.Record, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}
	s.mu.RUnlock()

	return f.Apply(records), nil
}

// Delete removes records by id. Unknown ids are ignored.
func (s *EmbeddingsStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.records[id]; !ok {
			continue
		}
		delete(s.records, id)
		for i, ordered := range s.order {
			if ordered == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Save writes a JSON snapshot of all records to path.
func (s *EmbeddingsStore) Save(_ context.Context, path string) error {
	s.mu.RLock()
	snapshot := make([]domain.Record, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.records[id])
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(recordsToJSON(snapshot), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// Load restores a JSON snapshot previously written by Save. A missing
// file is not an error: the store just starts empty.
func (s *EmbeddingsStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var snapshot []jsonRecord
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.Record, len(snapshot))
	s.order = s.order[:0]
	for _, rec := range snapshot {
		s.records[rec.ID] = domain.Record{ID: rec.ID, Text: rec.Text, Metadata: rec.Metadata}
		s.order = append(s.order, rec.ID)
	}
	return nil
}

// Count returns the number of stored records.
func (s *EmbeddingsStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// jsonRecord is the snapshot wire form of a record.
type jsonRecord struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func recordsToJSON(records []domain.Record) []jsonRecord {
	out := make([]jsonRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, jsonRecord{ID: rec.ID, Text: rec.Text, Metadata: rec.Metadata})
	}
	return out
}
