package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driven"
	"github.com/recall-labs/recall/internal/core/ports/driving"
	"github.com/recall-labs/recall/internal/logger"
)

// Ensure MemoryService implements the interface.
var _ driving.MemoryService = (*MemoryService)(nil)

// Metadata keys private to memory records.
const (
	metaAccessCount         = "access_count"
	metaRelatedTo           = "related_to"
	metaImportanceUpdatedAt = "importance_updated_at"
	metaImportanceHistory   = "importance_history"
)

const defaultImportance = 5

// MemoryService stores and recalls memories with contextual metadata.
type MemoryService struct {
	store     driven.EmbeddingsStore
	indexPath string
}

// NewMemoryService creates a memory service. indexPath may be empty to
// disable per-mutation checkpointing.
func NewMemoryService(store driven.EmbeddingsStore, indexPath string) *MemoryService {
	return &MemoryService{store: store, indexPath: indexPath}
}

// Store saves a memory with rich contextual metadata.
func (s *MemoryService) Store(ctx context.Context, input driving.StoreMemoryInput) (*driving.StoredMemory, error) {
	if input.Content == "" {
		return nil, fmt.Errorf("memory content is empty: %w", domain.ErrInvalidInput)
	}

	importance := input.Importance
	if importance == 0 {
		importance = defaultImportance
	}
	if importance < 1 || importance > 10 {
		return nil, fmt.Errorf("importance %d out of range 1-10: %w", input.Importance, domain.ErrInvalidInput)
	}

	ts := now()
	timestamp := input.Timestamp
	if timestamp == "" {
		timestamp = ts.Format(time.RFC3339Nano)
	} else if _, err := domain.ParseTimestamp(timestamp); err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", timestamp, domain.ErrInvalidInput)
	}

	metadata := map[string]any{
		domain.MetaType:       domain.TypeMemory,
		domain.MetaImportance: importance,
		domain.MetaTimestamp:  timestamp,
		domain.MetaCreatedAt:  ts.Format(time.RFC3339Nano),
		metaAccessCount:       0,
	}
	if len(input.Topics) > 0 {
		metadata[domain.MetaTopics] = input.Topics
	}
	if len(input.People) > 0 {
		metadata[domain.MetaPeople] = input.People
	}
	if len(input.Places) > 0 {
		metadata[domain.MetaPlaces] = input.Places
	}
	if input.Sentiment != "" {
		metadata[domain.MetaSentiment] = input.Sentiment
	}
	if input.Source != "" {
		metadata[domain.MetaSource] = input.Source
	}
	if len(input.RelatedTo) > 0 {
		metadata[metaRelatedTo] = input.RelatedTo
	}

	id := newID("mem", ts)
	record := domain.Record{ID: id, Text: input.Content, Metadata: metadata}

	if err := s.store.Upsert(ctx, []domain.Record{record}); err != nil {
		return nil, fmt.Errorf("storing memory: %w", err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return nil, err
	}

	logger.Info("Stored memory %s with importance=%d", id, importance)

	return &driving.StoredMemory{ID: id, Timestamp: timestamp, Importance: importance}, nil
}

// RecallByTime returns memories from a time period, newest first.
func (s *MemoryService) RecallByTime(ctx context.Context, query driving.TimeRecallQuery) (*driving.TimeRecall, error) {
	window, err := domain.ParsePeriod(query.Period, now())
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	records, err := s.store.Filter(ctx, domain.Filter{
		Topics:        query.Topics,
		MinImportance: query.MinImportance,
		Since:         window.Start,
		Until:         window.End,
		NewestFirst:   true,
		Limit:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal recall: %w", err)
	}

	memories := make([]driving.MemorySummary, 0, len(records))
	for _, rec := range records {
		memories = append(memories, driving.MemorySummary{
			ID:         rec.ID,
			Content:    rec.Text,
			Timestamp:  domain.MetaString(rec.Metadata, domain.MetaTimestamp, ""),
			Importance: domain.MetaInt(rec.Metadata, domain.MetaImportance, 0),
			Topics:     domain.MetaStrings(rec.Metadata, domain.MetaTopics),
			Sentiment:  domain.MetaString(rec.Metadata, domain.MetaSentiment, ""),
		})
	}

	return &driving.TimeRecall{Period: query.Period, Window: window, Memories: memories}, nil
}

// FindAssociations returns memories matching any of the given criteria.
// Criteria combine disjunctively: a memory qualifies when it satisfies at
// least one of them.
func (s *MemoryService) FindAssociations(ctx context.Context, query driving.AssociationQuery) ([]driving.AssociatedMemory, error) {
	var filters []domain.Filter
	if len(query.Topics) > 0 {
		filters = append(filters, domain.Filter{Topics: query.Topics})
	}
	if len(query.People) > 0 {
		filters = append(filters, domain.Filter{People: query.People})
	}
	if len(query.Places) > 0 {
		filters = append(filters, domain.Filter{Places: query.Places})
	}
	if query.Sentiment != "" {
		filters = append(filters, domain.Filter{Sentiment: query.Sentiment})
	}
	if query.MinImportance > 0 {
		filters = append(filters, domain.Filter{MinImportance: query.MinImportance})
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("at least one association criterion required: %w", domain.ErrInvalidInput)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	seen := make(map[string]bool)
	var memories []driving.AssociatedMemory
	for _, f := range filters {
		records, err := s.store.Filter(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("finding associations: %w", err)
		}
		for _, rec := range records {
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			memories = append(memories, driving.AssociatedMemory{ID: rec.ID, Content: rec.Text})
			if len(memories) >= limit {
				return memories, nil
			}
		}
	}

	return memories, nil
}

// Reflect analyses memories for patterns along the requested aspect.
func (s *MemoryService) Reflect(ctx context.Context, aspect, timePeriod string, limit int) (*driving.Reflection, error) {
	switch aspect {
	case "topics", "importance", "sentiment", "frequency", "timeline", "all":
	default:
		return nil, fmt.Errorf("unknown reflection aspect %q: %w", aspect, domain.ErrInvalidInput)
	}

	if limit <= 0 {
		limit = 100
	}

	var records []domain.Record
	var err error
	analysisPeriod := "all_time"

	if timePeriod != "" {
		window, perr := domain.ParsePeriod(timePeriod, now())
		if perr != nil {
			return nil, perr
		}
		analysisPeriod = timePeriod
		records, err = s.store.Filter(ctx, domain.Filter{
			Since:       window.Start,
			Until:       window.End,
			NewestFirst: true,
			Limit:       limit,
		})
	} else {
		records, err = s.store.Filter(ctx, domain.Filter{
			Types: []string{domain.TypeMemory},
			Limit: limit,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("collecting memories: %w", err)
	}

	reflection := &driving.Reflection{
		Aspect:         aspect,
		AnalysisPeriod: analysisPeriod,
		TotalMemories:  len(records),
	}

	if aspect == "topics" || aspect == "all" {
		reflection.TopTopics = topTopicCounts(records, 10)
	}

	if aspect == "importance" || aspect == "all" {
		reflection.Importance = importanceStats(records)
	}

	if aspect == "sentiment" || aspect == "all" {
		sentiments := make(map[string]int)
		for _, rec := range records {
			if sent := domain.MetaString(rec.Metadata, domain.MetaSentiment, ""); sent != "" {
				sentiments[sent]++
			}
		}
		reflection.Sentiments = sentiments
	}

	if aspect == "frequency" || aspect == "all" {
		reflection.Access = accessStats(records)
	}

	if aspect == "timeline" || aspect == "all" {
		reflection.Timeline = timelineStats(records)
	}

	reflection.Recommendations = reflectionRecommendations(reflection)

	return reflection, nil
}

// UpdateImportance changes a memory's importance level.
func (s *MemoryService) UpdateImportance(ctx context.Context, memoryID string, newImportance int, reason string) (*driving.ImportanceUpdate, error) {
	if newImportance < 1 || newImportance > 10 {
		return nil, fmt.Errorf("importance %d out of range 1-10: %w", newImportance, domain.ErrInvalidInput)
	}

	record, err := s.store.Get(ctx, memoryID)
	if err != nil {
		return nil, fmt.Errorf("memory %s: %w", memoryID, err)
	}

	metadata := domain.CloneMetadata(record.Metadata)
	oldImportance := domain.MetaInt(metadata, domain.MetaImportance, defaultImportance)
	metadata[domain.MetaImportance] = newImportance
	metadata[metaImportanceUpdatedAt] = now().Format(time.RFC3339Nano)

	if reason != "" {
		history, _ := metadata[metaImportanceHistory].([]any)
		history = append(history, map[string]any{
			"timestamp": now().Format(time.RFC3339Nano),
			"old_value": oldImportance,
			"new_value": newImportance,
			"reason":    reason,
		})
		metadata[metaImportanceHistory] = history
	}

	record.Metadata = metadata
	if err := s.store.Upsert(ctx, []domain.Record{*record}); err != nil {
		return nil, fmt.Errorf("updating memory %s: %w", memoryID, err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return nil, err
	}

	return &driving.ImportanceUpdate{
		MemoryID:      memoryID,
		OldImportance: oldImportance,
		NewImportance: newImportance,
	}, nil
}

// topTopicCounts tallies topic occurrences across records and returns
// the top n.
func topTopicCounts(records []domain.Record, n int) []driving.TopicCount {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, topic := range domain.MetaStrings(rec.Metadata, domain.MetaTopics) {
			counts[topic]++
		}
	}
	return topCounts(counts, n)
}

// sortTopicCounts orders most frequent first, ties broken alphabetically
// so output is stable.
func sortTopicCounts(counts []driving.TopicCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Topic < counts[j].Topic
	})
}

func importanceStats(records []domain.Record) *driving.ImportanceStats {
	var scores []int
	for _, rec := range records {
		if score := domain.MetaInt(rec.Metadata, domain.MetaImportance, 0); score > 0 {
			scores = append(scores, score)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	stats := &driving.ImportanceStats{Max: scores[0], Min: scores[0]}
	sum := 0
	for _, score := range scores {
		sum += score
		if score > stats.Max {
			stats.Max = score
		}
		if score < stats.Min {
			stats.Min = score
		}
		if score >= 8 {
			stats.HighImportanceCount++
		}
	}
	stats.Average = float64(sum) / float64(len(scores))
	return stats
}

func accessStats(records []domain.Record) *driving.AccessStats {
	if len(records) == 0 {
		return nil
	}

	stats := &driving.AccessStats{}
	sum := 0
	for _, rec := range records {
		count := domain.MetaInt(rec.Metadata, metaAccessCount, 0)
		sum += count
		if count > stats.MostAccessed {
			stats.MostAccessed = count
		}
		if count <= 1 {
			stats.RarelyAccessed++
		}
	}
	stats.AverageAccesses = float64(sum) / float64(len(records))
	return stats
}

func timelineStats(records []domain.Record) *driving.TimelineStats {
	var earliest, latest time.Time
	for _, rec := range records {
		ts, ok := domain.RecordTimestamp(rec)
		if !ok {
			continue
		}
		if earliest.IsZero() || ts.Before(earliest) {
			earliest = ts
		}
		if latest.IsZero() || ts.After(latest) {
			latest = ts
		}
	}
	if earliest.IsZero() {
		return nil
	}
	return &driving.TimelineStats{
		Earliest: earliest.Format(time.RFC3339Nano),
		Latest:   latest.Format(time.RFC3339Nano),
		SpanDays: int(latest.Sub(earliest).Hours() / 24),
	}
}

func reflectionRecommendations(r *driving.Reflection) []string {
	var recs []string
	if len(r.TopTopics) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Your most frequent topic is %q - consider consolidating related memories", r.TopTopics[0].Topic))
	}
	if r.Importance != nil && r.Importance.HighImportanceCount > 5 {
		recs = append(recs, "You have many high-importance memories - consider reviewing and organizing them")
	}
	if r.Access != nil && r.Access.RarelyAccessed > 10 {
		recs = append(recs, "Many memories are rarely accessed - consider reviewing their relevance")
	}
	return recs
}
