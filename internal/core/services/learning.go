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

// Ensure LearningService implements the interface.
var _ driving.LearningService = (*LearningService)(nil)

// Metadata keys private to learning records.
const (
	metaContext            = "context"
	metaTags               = "tags"
	metaExpandLater        = "expand_later"
	metaExpanded           = "expanded"
	metaExpandedTo         = "expanded_to"
	metaOriginalCaptureID  = "original_capture_id"
	metaOriginalTimestamp  = "original_timestamp"
	metaExpandedAt         = "expanded_at"
	metaKeyInsight         = "key_insight"
	metaReinforcementCount = "reinforcement_count"
	metaLastReinforced     = "last_reinforced"
	metaUsageContexts      = "usage_contexts"
	metaMasteryLevel       = "mastery_level"
	metaGoal               = "goal"
	metaLevel              = "level"
)

// reinforcementTarget is the count below which a learning still needs
// reinforcement.
const reinforcementTarget = 3

// LearningService supports incremental knowledge acquisition.
type LearningService struct {
	store     driven.EmbeddingsStore
	indexPath string
}

// NewLearningService creates a learning service.
func NewLearningService(store driven.EmbeddingsStore, indexPath string) *LearningService {
	return &LearningService{store: store, indexPath: indexPath}
}

// QuickCapture saves a learning moment with minimal metadata.
func (s *LearningService) QuickCapture(ctx context.Context, input driving.CaptureInput) (*driving.Capture, error) {
	if input.Content == "" {
		return nil, fmt.Errorf("capture content is empty: %w", domain.ErrInvalidInput)
	}

	ts := now()
	metadata := map[string]any{
		domain.MetaType:       domain.TypeQuickCapture,
		domain.MetaTimestamp:  ts.Format(time.RFC3339Nano),
		metaTags:              input.Tags,
		metaExpandLater:       input.ExpandLater,
		metaExpanded:          false,
		domain.MetaImportance: defaultImportance,
	}
	if input.Context != "" {
		metadata[metaContext] = input.Context
	}

	id := newID("quick", ts)
	record := domain.Record{ID: id, Text: input.Content, Metadata: metadata}

	if err := s.store.Upsert(ctx, []domain.Record{record}); err != nil {
		return nil, fmt.Errorf("storing capture: %w", err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return nil, err
	}

	logger.Info("Quick captured %s", id)

	return &driving.Capture{ID: id, ExpandLater: input.ExpandLater}, nil
}

// Expand turns a quick capture into a full learning record. The original
// capture stays in the store, marked as expanded and linked to the new
// record.
func (s *LearningService) Expand(ctx context.Context, input driving.ExpandInput) (*driving.ExpandedLearning, error) {
	if input.ExpandedContent == "" {
		return nil, fmt.Errorf("expanded content is empty: %w", domain.ErrInvalidInput)
	}

	original, err := s.store.Get(ctx, input.CaptureID)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", input.CaptureID, err)
	}

	importance := input.Importance
	if importance == 0 {
		importance = 7
	}
	topics := input.Topics
	if len(topics) == 0 {
		topics = domain.MetaStrings(original.Metadata, metaTags)
	}

	ts := now()
	metadata := map[string]any{
		domain.MetaType:       domain.TypeExpandedLearning,
		metaOriginalCaptureID: input.CaptureID,
		metaOriginalTimestamp: domain.MetaString(original.Metadata, domain.MetaTimestamp, ""),
		metaExpandedAt:        ts.Format(time.RFC3339Nano),
		domain.MetaTimestamp:  ts.Format(time.RFC3339Nano),
		domain.MetaImportance: importance,
		domain.MetaTopics:     topics,
		metaRelatedTo:         input.RelatedTo,
	}
	if input.KeyInsight != "" {
		metadata[metaKeyInsight] = input.KeyInsight
	}

	expandedID := newID("learn", ts)
	expanded := domain.Record{ID: expandedID, Text: input.ExpandedContent, Metadata: metadata}

	originalMeta := domain.CloneMetadata(original.Metadata)
	originalMeta[metaExpanded] = true
	originalMeta[metaExpandedTo] = expandedID
	original.Metadata = originalMeta

	if err := s.store.Upsert(ctx, []domain.Record{expanded, *original}); err != nil {
		return nil, fmt.Errorf("expanding capture %s: %w", input.CaptureID, err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return nil, err
	}

	logger.Info("Expanded learning %s -> %s", input.CaptureID, expandedID)

	return &driving.ExpandedLearning{
		ExpandedID: expandedID,
		OriginalID: input.CaptureID,
		KeyInsight: input.KeyInsight,
	}, nil
}

// Reinforce records a usage of a learning. Repetition progressively boosts
// importance: one extra point per three reinforcements, at most +3 per
// call, never above 10.
func (s *LearningService) Reinforce(ctx context.Context, input driving.ReinforceInput) (*driving.Reinforcement, error) {
	record, err := s.store.Get(ctx, input.LearningID)
	if err != nil {
		return nil, fmt.Errorf("learning %s: %w", input.LearningID, err)
	}

	metadata := domain.CloneMetadata(record.Metadata)
	ts := now().Format(time.RFC3339Nano)

	count := domain.MetaInt(metadata, metaReinforcementCount, 0) + 1
	metadata[metaReinforcementCount] = count
	metadata[metaLastReinforced] = ts

	if input.UsageContext != "" {
		contexts, _ := metadata[metaUsageContexts].([]any)
		contexts = append(contexts, map[string]any{"timestamp": ts, "context": input.UsageContext})
		metadata[metaUsageContexts] = contexts
	}
	if input.MasteryLevel > 0 {
		metadata[metaMasteryLevel] = input.MasteryLevel
	}

	importance := domain.MetaInt(metadata, domain.MetaImportance, defaultImportance)
	boost := count / 3
	if boost > 3 {
		boost = 3
	}
	newImportance := importance + boost
	if newImportance > 10 {
		newImportance = 10
	}
	if newImportance > importance {
		metadata[domain.MetaImportance] = newImportance
	}

	record.Metadata = metadata
	if err := s.store.Upsert(ctx, []domain.Record{*record}); err != nil {
		return nil, fmt.Errorf("reinforcing %s: %w", input.LearningID, err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return nil, err
	}

	logger.Info("Reinforced learning %s (count=%d, importance=%d)", input.LearningID, count, newImportance)

	return &driving.Reinforcement{
		LearningID:         input.LearningID,
		ReinforcementCount: count,
		Importance:         newImportance,
		MasteryLevel:       domain.MetaInt(metadata, metaMasteryLevel, 0),
	}, nil
}

// TrackProgress analyses learning activity over a period.
func (s *LearningService) TrackProgress(ctx context.Context, timePeriod string) (*driving.LearningProgress, error) {
	nowTime := now()
	var start time.Time
	switch timePeriod {
	case "today":
		start = time.Date(nowTime.Year(), nowTime.Month(), nowTime.Day(), 0, 0, 0, 0, nowTime.Location())
	case "last_month":
		start = nowTime.AddDate(0, 0, -30)
	case "last_week", "":
		timePeriod = "last_week"
		start = nowTime.AddDate(0, 0, -7)
	default:
		return nil, fmt.Errorf("unknown time period %q: %w", timePeriod, domain.ErrInvalidInput)
	}

	records, err := s.store.Filter(ctx, domain.Filter{
		Types: []string{domain.TypeQuickCapture, domain.TypeExpandedLearning, domain.TypeMemory},
		Since: start,
	})
	if err != nil {
		return nil, fmt.Errorf("collecting learnings: %w", err)
	}

	progress := &driving.LearningProgress{Period: timePeriod}
	topicCounts := make(map[string]int)
	byDay := make(map[string]int)

	for _, rec := range records {
		if ts, ok := domain.RecordTimestamp(rec); ok {
			byDay[ts.Format("2006-01-02")]++
		}

		switch domain.MetaString(rec.Metadata, domain.MetaType, "") {
		case domain.TypeQuickCapture:
			progress.TotalCaptures++
			expanded := domain.MetaBool(rec.Metadata, metaExpanded, false)
			if !expanded && domain.MetaBool(rec.Metadata, metaExpandLater, true) {
				progress.PendingExpansion++
			}
		case domain.TypeExpandedLearning:
			progress.TotalExpanded++
			count := domain.MetaInt(rec.Metadata, metaReinforcementCount, 0)
			if count < reinforcementTarget {
				progress.NeedsReinforcement = append(progress.NeedsReinforcement, driving.ReinforcementDebt{
					ID:                 rec.ID,
					Content:            truncate(rec.Text, 100),
					ReinforcementCount: count,
				})
			}
		}

		topics := domain.MetaStrings(rec.Metadata, domain.MetaTopics)
		if len(topics) == 0 {
			topics = domain.MetaStrings(rec.Metadata, metaTags)
		}
		for _, topic := range topics {
			topicCounts[topic]++
		}
	}

	progress.ActiveTopics = topCounts(topicCounts, 10)

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		progress.DailyActivity = append(progress.DailyActivity, driving.DayActivity{
			Date:      day,
			Learnings: byDay[day],
		})
	}

	// Streak: consecutive days of activity counting back from today.
	for i := 0; ; i++ {
		day := nowTime.AddDate(0, 0, -i).Format("2006-01-02")
		if byDay[day] == 0 {
			break
		}
		progress.StreakDays++
	}

	progress.Recommendations = progressRecommendations(progress)
	if len(progress.NeedsReinforcement) > 5 {
		progress.NeedsReinforcement = progress.NeedsReinforcement[:5]
	}

	return progress, nil
}

// CreatePath builds a milestone-based learning path toward a goal and
// stores it as a record.
func (s *LearningService) CreatePath(ctx context.Context, input driving.PathInput) (*driving.LearningPath, error) {
	if input.Goal == "" {
		return nil, fmt.Errorf("learning goal is empty: %w", domain.ErrInvalidInput)
	}

	level := input.CurrentLevel
	if level == "" {
		level = "beginner"
	}

	query := "goal: " + input.Goal
	for _, topic := range input.RelatedTopics {
		query += " " + topic
	}

	results, err := s.store.Search(ctx, query, domain.SearchOptions{Limit: 20})
	if err != nil {
		return nil, fmt.Errorf("searching related learnings: %w", err)
	}

	known := make(map[string]bool)
	for _, topic := range input.RelatedTopics {
		known[topic] = true
	}
	for _, result := range results {
		topics := domain.MetaStrings(result.Metadata, domain.MetaTopics)
		if len(topics) == 0 {
			topics = domain.MetaStrings(result.Metadata, metaTags)
		}
		for _, topic := range topics {
			known[topic] = true
		}
	}

	knownTopics := make([]string, 0, len(known))
	for topic := range known {
		knownTopics = append(knownTopics, topic)
	}
	sort.Strings(knownTopics)

	ts := now()
	pathID := newID("path", ts)
	path := &driving.LearningPath{
		PathID:       pathID,
		Goal:         input.Goal,
		CurrentLevel: level,
		KnownTopics:  knownTopics,
		Milestones:   milestonesForLevel(input.Goal, level),
	}

	text := fmt.Sprintf("Learning Path: %s\nLevel: %s\n\nThis learning path will guide your progressive mastery.",
		input.Goal, level)
	record := domain.Record{
		ID:   pathID,
		Text: text,
		Metadata: map[string]any{
			domain.MetaType:      domain.TypeLearningPath,
			metaGoal:             input.Goal,
			metaLevel:            level,
			domain.MetaTimestamp: ts.Format(time.RFC3339Nano),
			domain.MetaTopics:    knownTopics,
		},
	}

	if err := s.store.Upsert(ctx, []domain.Record{record}); err != nil {
		return nil, fmt.Errorf("storing learning path: %w", err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return nil, err
	}

	logger.Info("Created learning path %s for goal %q", pathID, input.Goal)

	return path, nil
}

// milestonesForLevel returns the phase plan for a goal. Beginners get a
// three-phase foundation plan; everyone else a two-phase advanced plan.
func milestonesForLevel(goal, level string) []driving.Milestone {
	if level == "beginner" {
		return []driving.Milestone{
			{
				Phase:       "Foundation",
				Description: fmt.Sprintf("Build foundational understanding of %s", goal),
				Tasks: []string{
					"Quick capture key concepts as you encounter them",
					"Expand captures into detailed learnings",
					"Reinforce basics through practice",
				},
			},
			{
				Phase:       "Practice",
				Description: "Apply knowledge in real scenarios",
				Tasks: []string{
					"Use knowledge in projects",
					"Track reinforcement as you apply concepts",
					"Identify gaps through practical experience",
				},
			},
			{
				Phase:       "Mastery",
				Description: "Achieve deep understanding",
				Tasks: []string{
					"Connect learnings with related concepts",
					"Teach or explain to others",
					"Regular reinforcement to maintain mastery",
				},
			},
		}
	}
	return []driving.Milestone{
		{
			Phase:       "Advanced Topics",
			Description: fmt.Sprintf("Explore advanced aspects of %s", goal),
			Tasks: []string{
				"Quick capture advanced patterns and techniques",
				"Connect with existing knowledge",
				"Reinforce through real-world application",
			},
		},
		{
			Phase:       "Expert",
			Description: "Achieve expertise",
			Tasks: []string{
				"Contribute to knowledge base",
				"Mentor others",
				"Stay updated with latest developments",
			},
		},
	}
}

func progressRecommendations(p *driving.LearningProgress) []string {
	var recs []string
	if p.PendingExpansion > 5 {
		recs = append(recs, fmt.Sprintf(
			"You have %d quick captures waiting to be expanded. Consider a review session!", p.PendingExpansion))
	}
	if len(p.NeedsReinforcement) > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d learnings need reinforcement for better retention.", len(p.NeedsReinforcement)))
	}
	switch {
	case p.StreakDays >= 7:
		recs = append(recs, fmt.Sprintf("Excellent! You're on a %d-day learning streak!", p.StreakDays))
	case p.StreakDays == 0:
		recs = append(recs, "Start a new learning streak today!")
	}
	if len(p.ActiveTopics) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Your focus area is %q - consider consolidating this knowledge.", p.ActiveTopics[0].Topic))
	}
	return recs
}

// truncate shortens s to at most n characters, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
