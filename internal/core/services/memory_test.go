package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driving"
)

// pinClock fixes the service clock for the duration of a test.
func pinClock(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })
}

func TestMemoryService_Store(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewMemoryService(store, "")

	stored, err := service.Store(ctx, driving.StoreMemoryInput{
		Content:   "learned about goroutine leaks",
		Topics:    []string{"go", "concurrency"},
		People:    []string{"Alice"},
		Sentiment: "positive",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, 5, stored.Importance, "importance defaults to 5")

	rec, err := store.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "learned about goroutine leaks", rec.Text)
	assert.Equal(t, domain.TypeMemory, domain.MetaString(rec.Metadata, domain.MetaType, ""))
	assert.Equal(t, []string{"go", "concurrency"}, domain.MetaStrings(rec.Metadata, domain.MetaTopics))
	assert.Equal(t, "positive", domain.MetaString(rec.Metadata, domain.MetaSentiment, ""))
}

func TestMemoryService_StoreValidation(t *testing.T) {
	ctx := context.Background()
	service := NewMemoryService(memory.NewEmbeddingsStore(), "")

	t.Run("empty content", func(t *testing.T) {
		_, err := service.Store(ctx, driving.StoreMemoryInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("importance out of range", func(t *testing.T) {
		_, err := service.Store(ctx, driving.StoreMemoryInput{Content: "x", Importance: 11})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unparseable timestamp", func(t *testing.T) {
		_, err := service.Store(ctx, driving.StoreMemoryInput{Content: "x", Timestamp: "not a time"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestMemoryService_RecallByTime(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewMemoryService(store, "")

	base := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	pinClock(t, base)

	for _, m := range []struct {
		content string
		age     time.Duration
	}{
		{"fresh memory", 24 * time.Hour},
		{"older memory", 3 * 24 * time.Hour},
		{"ancient memory", 60 * 24 * time.Hour},
	} {
		_, err := service.Store(ctx, driving.StoreMemoryInput{
			Content:   m.content,
			Timestamp: base.Add(-m.age).Format(time.RFC3339Nano),
		})
		require.NoError(t, err)
	}

	recall, err := service.RecallByTime(ctx, driving.TimeRecallQuery{Period: "last_week"})
	require.NoError(t, err)

	require.Len(t, recall.Memories, 2)
	assert.Equal(t, "fresh memory", recall.Memories[0].Content, "newest first")
	assert.Equal(t, "older memory", recall.Memories[1].Content)
}

func TestMemoryService_RecallByTimeUnknownPeriod(t *testing.T) {
	service := NewMemoryService(memory.NewEmbeddingsStore(), "")

	_, err := service.RecallByTime(context.Background(), driving.TimeRecallQuery{Period: "fortnight"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMemoryService_FindAssociations(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewMemoryService(store, "")

	_, err := service.Store(ctx, driving.StoreMemoryInput{
		Content: "lunch with Alice", People: []string{"Alice"},
	})
	require.NoError(t, err)
	_, err = service.Store(ctx, driving.StoreMemoryInput{
		Content: "read about compilers", Topics: []string{"compilers"},
	})
	require.NoError(t, err)

	t.Run("requires at least one criterion", func(t *testing.T) {
		_, err := service.FindAssociations(ctx, driving.AssociationQuery{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("matches any criterion", func(t *testing.T) {
		memories, err := service.FindAssociations(ctx, driving.AssociationQuery{
			People: []string{"alice"},
			Topics: []string{"compilers"},
		})
		require.NoError(t, err)
		assert.Len(t, memories, 2, "criteria combine disjunctively")
	})

	t.Run("single criterion", func(t *testing.T) {
		memories, err := service.FindAssociations(ctx, driving.AssociationQuery{
			People: []string{"Alice"},
		})
		require.NoError(t, err)
		require.Len(t, memories, 1)
		assert.Equal(t, "lunch with Alice", memories[0].Content)
	})
}

func TestMemoryService_Reflect(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewMemoryService(store, "")

	for i := 0; i < 3; i++ {
		_, err := service.Store(ctx, driving.StoreMemoryInput{
			Content:    "go memory",
			Topics:     []string{"go"},
			Importance: 9,
			Sentiment:  "positive",
		})
		require.NoError(t, err)
	}
	_, err := service.Store(ctx, driving.StoreMemoryInput{
		Content: "cooking memory", Topics: []string{"cooking"}, Importance: 2, Sentiment: "neutral",
	})
	require.NoError(t, err)

	reflection, err := service.Reflect(ctx, "all", "", 0)
	require.NoError(t, err)

	assert.Equal(t, 4, reflection.TotalMemories)
	assert.Equal(t, "all_time", reflection.AnalysisPeriod)

	require.NotEmpty(t, reflection.TopTopics)
	assert.Equal(t, "go", reflection.TopTopics[0].Topic)
	assert.Equal(t, 3, reflection.TopTopics[0].Count)

	require.NotNil(t, reflection.Importance)
	assert.Equal(t, 9, reflection.Importance.Max)
	assert.Equal(t, 2, reflection.Importance.Min)
	assert.Equal(t, 3, reflection.Importance.HighImportanceCount)

	assert.Equal(t, 3, reflection.Sentiments["positive"])
	assert.Equal(t, 1, reflection.Sentiments["neutral"])

	require.NotNil(t, reflection.Timeline)
}

func TestMemoryService_ReflectUnknownAspect(t *testing.T) {
	service := NewMemoryService(memory.NewEmbeddingsStore(), "")

	_, err := service.Reflect(context.Background(), "vibes", "", 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMemoryService_UpdateImportance(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewMemoryService(store, "")

	stored, err := service.Store(ctx, driving.StoreMemoryInput{Content: "key insight", Importance: 4})
	require.NoError(t, err)

	update, err := service.UpdateImportance(ctx, stored.ID, 9, "critical for project")
	require.NoError(t, err)

	assert.Equal(t, 4, update.OldImportance)
	assert.Equal(t, 9, update.NewImportance)

	rec, err := store.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, domain.MetaInt(rec.Metadata, domain.MetaImportance, 0))

	history, ok := rec.Metadata[metaImportanceHistory].([]any)
	require.True(t, ok, "reasoned updates record history")
	require.Len(t, history, 1)
}

func TestMemoryService_UpdateImportanceNotFound(t *testing.T) {
	service := NewMemoryService(memory.NewEmbeddingsStore(), "")

	_, err := service.UpdateImportance(context.Background(), "mem_missing", 9, "")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
