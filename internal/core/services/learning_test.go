package services

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driving"
)

func TestLearningService_QuickCapture(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewLearningService(store, "")

	capture, err := service.QuickCapture(ctx, driving.CaptureInput{
		Content:     "defer runs LIFO",
		Tags:        []string{"go"},
		ExpandLater: true,
	})
	require.NoError(t, err)

	rec, err := store.Get(ctx, capture.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeQuickCapture, domain.MetaString(rec.Metadata, domain.MetaType, ""))
	assert.False(t, domain.MetaBool(rec.Metadata, metaExpanded, true))
	assert.True(t, domain.MetaBool(rec.Metadata, metaExpandLater, false))
	assert.Equal(t, []string{"go"}, domain.MetaStrings(rec.Metadata, metaTags))
}

func TestLearningService_QuickCaptureEmptyContent(t *testing.T) {
	service := NewLearningService(memory.NewEmbeddingsStore(), "")

	_, err := service.QuickCapture(context.Background(), driving.CaptureInput{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLearningService_Expand(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewLearningService(store, "")

	capture, err := service.QuickCapture(ctx, driving.CaptureInput{
		Content: "defer runs LIFO", Tags: []string{"go"},
	})
	require.NoError(t, err)

	expanded, err := service.Expand(ctx, driving.ExpandInput{
		CaptureID:       capture.ID,
		ExpandedContent: "Deferred calls run last-in first-out when the function returns.",
		KeyInsight:      "LIFO ordering",
	})
	require.NoError(t, err)

	assert.Equal(t, capture.ID, expanded.OriginalID)

	learning, err := store.Get(ctx, expanded.ExpandedID)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeExpandedLearning, domain.MetaString(learning.Metadata, domain.MetaType, ""))
	assert.Equal(t, []string{"go"}, domain.MetaStrings(learning.Metadata, domain.MetaTopics),
		"topics inherited from capture tags")
	assert.Equal(t, "LIFO ordering", domain.MetaString(learning.Metadata, metaKeyInsight, ""))

	original, err := store.Get(ctx, capture.ID)
	require.NoError(t, err)
	assert.True(t, domain.MetaBool(original.Metadata, metaExpanded, false))
	assert.Equal(t, expanded.ExpandedID, domain.MetaString(original.Metadata, metaExpandedTo, ""))
}

func TestLearningService_ExpandUnknownCapture(t *testing.T) {
	service := NewLearningService(memory.NewEmbeddingsStore(), "")

	_, err := service.Expand(context.Background(), driving.ExpandInput{
		CaptureID: "quick_missing", ExpandedContent: "text",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLearningService_ReinforceBoostsImportance(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewLearningService(store, "")

	capture, err := service.QuickCapture(ctx, driving.CaptureInput{Content: "fact"})
	require.NoError(t, err)
	expanded, err := service.Expand(ctx, driving.ExpandInput{
		CaptureID: capture.ID, ExpandedContent: "full fact", Importance: 5,
	})
	require.NoError(t, err)

	var last *driving.Reinforcement
	for i := 0; i < 3; i++ {
		last, err = service.Reinforce(ctx, driving.ReinforceInput{
			LearningID:   expanded.ExpandedID,
			UsageContext: "used in review",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, last.ReinforcementCount)
	assert.Equal(t, 6, last.Importance, "third reinforcement earns a +1 boost")

	rec, err := store.Get(ctx, expanded.ExpandedID)
	require.NoError(t, err)
	contexts, ok := rec.Metadata[metaUsageContexts].([]any)
	require.True(t, ok)
	assert.Len(t, contexts, 3)
}

func TestLearningService_ReinforceCapsAtTen(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewLearningService(store, "")

	require.NoError(t, store.Upsert(ctx, []domain.Record{{
		ID:   "learn_x",
		Text: "already critical",
		Metadata: map[string]any{
			domain.MetaType:        domain.TypeExpandedLearning,
			domain.MetaImportance:  10,
			metaReinforcementCount: 8,
		},
	}}))

	result, err := service.Reinforce(ctx, driving.ReinforceInput{LearningID: "learn_x"})
	require.NoError(t, err)

	assert.Equal(t, 9, result.ReinforcementCount)
	assert.Equal(t, 10, result.Importance)
}

func TestLearningService_TrackProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewLearningService(store, "")

	base := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	pinClock(t, base)

	// Activity today and yesterday, forming a two-day streak.
	capture, err := service.QuickCapture(ctx, driving.CaptureInput{
		Content: "today's capture", Tags: []string{"go"}, ExpandLater: true,
	})
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []domain.Record{{
		ID:   "learn_old",
		Text: "yesterday's learning",
		Metadata: map[string]any{
			domain.MetaType:       domain.TypeExpandedLearning,
			domain.MetaTimestamp:  base.AddDate(0, 0, -1).Format(time.RFC3339Nano),
			domain.MetaTopics:     []string{"go"},
			domain.MetaImportance: 7,
		},
	}}))

	progress, err := service.TrackProgress(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "last_week", progress.Period)
	assert.Equal(t, 1, progress.TotalCaptures)
	assert.Equal(t, 1, progress.TotalExpanded)
	assert.Equal(t, 1, progress.PendingExpansion)
	assert.Equal(t, 2, progress.StreakDays)

	require.Len(t, progress.NeedsReinforcement, 1)
	assert.Equal(t, "learn_old", progress.NeedsReinforcement[0].ID)

	require.NotEmpty(t, progress.ActiveTopics)
	assert.Equal(t, "go", progress.ActiveTopics[0].Topic)
	assert.Equal(t, 2, progress.ActiveTopics[0].Count)

	require.Len(t, progress.DailyActivity, 2)
	assert.Equal(t, base.AddDate(0, 0, -1).Format("2006-01-02"), progress.DailyActivity[0].Date)

	// Expanding the capture clears the pending count.
	_, err = service.Expand(ctx, driving.ExpandInput{CaptureID: capture.ID, ExpandedContent: "expanded"})
	require.NoError(t, err)

	progress, err = service.TrackProgress(ctx, "last_week")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.PendingExpansion)
	assert.Equal(t, 2, progress.TotalExpanded)
}

func TestLearningService_TrackProgressUnknownPeriod(t *testing.T) {
	service := NewLearningService(memory.NewEmbeddingsStore(), "")

	_, err := service.TrackProgress(context.Background(), "decade")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLearningService_CreatePath(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewLearningService(store, "")

	_, err := service.QuickCapture(ctx, driving.CaptureInput{
		Content: "goroutines are cheap", Tags: []string{"concurrency"},
	})
	require.NoError(t, err)

	path, err := service.CreatePath(ctx, driving.PathInput{
		Goal:          "master goroutines",
		RelatedTopics: []string{"go"},
	})
	require.NoError(t, err)

	assert.Equal(t, "beginner", path.CurrentLevel)
	require.Len(t, path.Milestones, 3)
	assert.Equal(t, "Foundation", path.Milestones[0].Phase)
	assert.Equal(t, "Mastery", path.Milestones[2].Phase)
	assert.Contains(t, path.KnownTopics, "go")
	assert.Contains(t, path.KnownTopics, "concurrency")

	rec, err := store.Get(ctx, path.PathID)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeLearningPath, domain.MetaString(rec.Metadata, domain.MetaType, ""))
}

func TestLearningService_CreatePathAdvancedLevel(t *testing.T) {
	service := NewLearningService(memory.NewEmbeddingsStore(), "")

	path, err := service.CreatePath(context.Background(), driving.PathInput{
		Goal: "distributed systems", CurrentLevel: "advanced",
	})
	require.NoError(t, err)

	require.Len(t, path.Milestones, 2)
	assert.Equal(t, "Advanced Topics", path.Milestones[0].Phase)
	assert.Equal(t, "Expert", path.Milestones[1].Phase)
}

func TestLearningService_CreatePathRequiresGoal(t *testing.T) {
	service := NewLearningService(memory.NewEmbeddingsStore(), "")

	_, err := service.CreatePath(context.Background(), driving.PathInput{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTruncate_CountsRunes(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))

	// Cuts fall on character boundaries, never inside a multi-byte rune.
	cut := truncate("ééééé", 3)
	assert.Equal(t, "ééé...", cut)
	assert.True(t, utf8.ValidString(cut))
}
