package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "recall.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := domain.Record{
		ID:   "doc1",
		Text: "hello world",
		Metadata: map[string]any{
			domain.MetaType:       domain.TypeDocument,
			domain.MetaImportance: 7,
		},
	}
	require.NoError(t, store.Upsert(ctx, []domain.Record{rec}))

	got, err := store.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Text)
	assert.Equal(t, domain.TypeDocument, domain.MetaString(got.Metadata, domain.MetaType, ""))
	assert.Equal(t, 7, domain.MetaInt(got.Metadata, domain.MetaImportance, 0))
}

func TestStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, []domain.Record{{ID: "a", Text: "v1"}}))
	require.NoError(t, store.Upsert(ctx, []domain.Record{{ID: "a", Text: "v2"}}))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Text)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_SearchRanksByOverlap(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, []domain.Record{
		{ID: "full", Text: "go concurrency patterns"},
		{ID: "partial", Text: "concurrency elsewhere"},
		{ID: "none", Text: "unrelated"},
	}))

	results, err := store.Search(ctx, "go concurrency", domain.SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "full", results[0].ID)
	assert.Equal(t, "partial", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestStore_FilterPushesTimestampBounds(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	stamp := func(t time.Time) map[string]any {
		return map[string]any{domain.MetaTimestamp: t.Format(time.RFC3339Nano)}
	}
	require.NoError(t, store.Upsert(ctx, []domain.Record{
		{ID: "jan", Text: "january", Metadata: stamp(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))},
		{ID: "jun", Text: "june", Metadata: stamp(time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))},
		{ID: "undated", Text: "no timestamp"},
	}))

	records, err := store.Filter(ctx, domain.Filter{
		Since: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "jun", records[0].ID)
}

func TestStore_FilterByTypeAndImportance(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, []domain.Record{
		{ID: "m1", Text: "important memory", Metadata: map[string]any{
			domain.MetaType: domain.TypeMemory, domain.MetaImportance: 9,
		}},
		{ID: "m2", Text: "minor memory", Metadata: map[string]any{
			domain.MetaType: domain.TypeMemory, domain.MetaImportance: 2,
		}},
		{ID: "c1", Text: "a conversation", Metadata: map[string]any{
			domain.MetaType: domain.TypeConversation, domain.MetaImportance: 9,
		}},
	}))

	records, err := store.Filter(ctx, domain.Filter{
		Types:         []string{domain.TypeMemory},
		MinImportance: 5,
	})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].ID)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, []domain.Record{
		{ID: "keep", Text: "stays"},
		{ID: "drop", Text: "goes"},
	}))

	require.NoError(t, store.Delete(ctx, []string{"drop", "never-existed"}))

	_, err := store.Get(ctx, "drop")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_SaveSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	snapshot := filepath.Join(t.TempDir(), "snapshot.db")

	require.NoError(t, store.Upsert(ctx, []domain.Record{{ID: "a", Text: "alpha"}}))
	require.NoError(t, store.Save(ctx, snapshot))

	restored, err := NewStore(snapshot)
	require.NoError(t, err)
	defer restored.Close()

	got, err := restored.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Text)
}

func TestStore_SaveToOwnPathIsCheckpoint(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, []domain.Record{{ID: "a", Text: "alpha"}}))
	require.NoError(t, store.Save(ctx, store.Path()))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
