package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.EmbeddingsStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id       TEXT PRIMARY KEY,
	text     TEXT NOT NULL,
	metadata TEXT,
	ts       TEXT
);
CREATE INDEX IF NOT EXISTS idx_records_ts ON records(ts);
`

const defaultSearchLimit = 10

// tsLayout is fixed-width so the ts column compares correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed implementation of driven.EmbeddingsStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) a store at dbPath. An empty path defaults
// to ~/.recall/data/recall.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".recall", "data", "recall.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for better concurrency between the MCP server and watcher.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts or replaces records by id.
func (s *Store) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, text, metadata, ts) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET text = excluded.text, metadata = excluded.metadata, ts = excluded.ts`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		metadata, ts, encErr := encodeMetadata(rec)
		if encErr != nil {
			return encErr
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Text, metadata, ts); err != nil {
			return fmt.Errorf("upserting record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Index bulk-inserts records. In this backend it is equivalent to Upsert.
func (s *Store) Index(ctx context.Context, records []domain.Record) error {
	return s.Upsert(ctx, records)
}

// Get retrieves a record by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, text, metadata FROM records WHERE id = ?", id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading record %s: %w", id, err)
	}
	return rec, nil
}

// Search scores stored records against the query by term overlap and
// returns the best matches, highest score first.
func (s *Store) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	prefilter := domain.Filter{
		Types:         opts.Types,
		MinImportance: opts.MinImportance,
		SessionID:     opts.SessionID,
	}

	records, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	var scored []domain.ScoredRecord
	for _, rec := range records {
		if !prefilter.Matches(rec) {
			continue
		}
		score := domain.ScoreOverlap(query, rec.Text)
		if score > 0 {
			scored = append(scored, domain.ScoredRecord{Record: rec, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Filter returns records matching the structured filter. Timestamp bounds
// are pushed into SQL; the rest of the criteria share the domain filter so
// semantics match the in-memory backend.
func (s *Store) Filter(ctx context.Context, f domain.Filter) ([]domain.Record, error) {
	q := "SELECT id, text, metadata FROM records"
	var conds []string
	var args []any
	if !f.Since.IsZero() {
		conds = append(conds, "ts >= ?")
		args = append(args, f.Since.UTC().Format(tsLayout))
	}
	if !f.Until.IsZero() {
		conds = append(conds, "ts <= ?")
		args = append(args, f.Until.UTC().Format(tsLayout))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning record: %w", scanErr)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return f.Apply(records), nil
}

// Delete removes records by id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("deleting records: %w", err)
	}
	return nil
}

// Save checkpoints the WAL. When path differs from the database file, a
// full copy is written there via VACUUM INTO.
func (s *Store) Save(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpointing: %w", err)
	}

	if path == "" || path == s.path {
		return nil
	}

	// VACUUM INTO refuses to overwrite.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale snapshot %s: %w", path, err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// loadAll reads every record in insertion order.
func (s *Store) loadAll(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, text, metadata FROM records ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning record: %w", scanErr)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord decodes one row into a record.
func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var metadata sql.NullString
	if err := row.Scan(&rec.ID, &rec.Text, &metadata); err != nil {
		return nil, err
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// encodeMetadata serialises a record's metadata and extracts its timestamp
// for the indexed ts column.
func encodeMetadata(rec domain.Record) (sql.NullString, sql.NullString, error) {
	var metadata, ts sql.NullString

	if rec.Metadata != nil {
		data, err := json.Marshal(rec.Metadata)
		if err != nil {
			return metadata, ts, fmt.Errorf("encoding metadata for %s: %w", rec.ID, err)
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}

	if t, ok := domain.RecordTimestamp(rec); ok {
		ts = sql.NullString{String: t.UTC().Format(tsLayout), Valid: true}
	}

	return metadata, ts, nil
}
