package driving

import (
	"context"

	"github.com/recall-labs/recall/internal/core/domain"
)

// MemoryService stores and recalls memories with rich contextual metadata.
type MemoryService interface {
	// Store saves a memory. Importance defaults to 5 and the timestamp to
	// now when unset.
	Store(ctx context.Context, input StoreMemoryInput) (*StoredMemory, error)

	// RecallByTime returns memories whose timestamp falls in the named
	// period, newest first.
	RecallByTime(ctx context.Context, query TimeRecallQuery) (*TimeRecall, error)

	// FindAssociations returns memories matching contextual criteria.
	// At least one criterion must be set.
	FindAssociations(ctx context.Context, query AssociationQuery) ([]AssociatedMemory, error)

	// Reflect aggregates memories into patterns and recommendations.
	// Aspect is one of "topics", "importance", "sentiment", "frequency",
	// "timeline" or "all".
	Reflect(ctx context.Context, aspect, timePeriod string, limit int) (*Reflection, error)

	// UpdateImportance changes a memory's importance, recording the change
	// in its history when a reason is given.
	UpdateImportance(ctx context.Context, memoryID string, newImportance int, reason string) (*ImportanceUpdate, error)
}

// StoreMemoryInput carries the content and context of a new memory.
type StoreMemoryInput struct {
	Content    string
	Importance int
	Timestamp  string
	Topics     []string
	People     []string
	Places     []string
	Sentiment  string
	Source     string
	RelatedTo  []string
}

// StoredMemory identifies a freshly stored memory.
type StoredMemory struct {
	ID         string
	Timestamp  string
	Importance int
}

// TimeRecallQuery selects memories by time period with optional filters.
type TimeRecallQuery struct {
	// Period is "today", "yesterday", "last_week", "last_month",
	// "last_year" or "YYYY-MM-DD:YYYY-MM-DD".
	Period        string
	Topics        []string
	MinImportance int
	Limit         int
}

// TimeRecall is the result of a temporal recall.
type TimeRecall struct {
	Period   string
	Window   domain.Period
	Memories []MemorySummary
}

// MemorySummary is the recalled view of a memory.
type MemorySummary struct {
	ID         string
	Content    string
	Timestamp  string
	Importance int
	Topics     []string
	Sentiment  string
}

// AssociationQuery selects memories by contextual association.
type AssociationQuery struct {
	Topics        []string
	People        []string
	Places        []string
	Sentiment     string
	MinImportance int
	Limit         int
}

// AssociatedMemory is a memory found through association.
type AssociatedMemory struct {
	ID      string
	Content string
}

// Reflection aggregates patterns across stored memories.
type Reflection struct {
	Aspect          string
	AnalysisPeriod  string
	TotalMemories   int
	TopTopics       []TopicCount
	Importance      *ImportanceStats
	Sentiments      map[string]int
	Access          *AccessStats
	Timeline        *TimelineStats
	Recommendations []string
}

// AccessStats summarises how often memories have been accessed.
type AccessStats struct {
	AverageAccesses float64
	MostAccessed    int
	RarelyAccessed  int
}

// TopicCount is a topic with its occurrence count.
type TopicCount struct {
	Topic string
	Count int
}

// ImportanceStats summarises the importance distribution.
type ImportanceStats struct {
	Average             float64
	Max                 int
	Min                 int
	HighImportanceCount int
}

// TimelineStats describes the temporal spread of memories.
type TimelineStats struct {
	Earliest string
	Latest   string
	SpanDays int
}

// ImportanceUpdate reports an importance change.
type ImportanceUpdate struct {
	MemoryID      string
	OldImportance int
	NewImportance int
}
