package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-labs/recall/internal/core/ports/driving"
)

// timeFormat renders period boundaries in tool output.
const timeFormat = time.RFC3339Nano

// StoreMemoryInput is the input schema for the store_memory tool.
type StoreMemoryInput struct {
	Content    string   `json:"content" jsonschema:"the memory content to store"`
	Importance int      `json:"importance,omitempty" jsonschema:"importance from 1 to 10 (default 5)"`
	Timestamp  string   `json:"timestamp,omitempty" jsonschema:"RFC 3339 timestamp (default now)"`
	Topics     []string `json:"topics,omitempty" jsonschema:"topics this memory relates to"`
	People     []string `json:"people,omitempty" jsonschema:"people involved in this memory"`
	Places     []string `json:"places,omitempty" jsonschema:"places associated with this memory"`
	Sentiment  string   `json:"sentiment,omitempty" jsonschema:"sentiment: positive, negative or neutral"`
	Source     string   `json:"source,omitempty" jsonschema:"where this memory came from"`
	RelatedTo  []string `json:"related_to,omitempty" jsonschema:"ids of related memories"`
}

// StoreMemoryOutput is the output schema for the store_memory tool.
type StoreMemoryOutput struct {
	MemoryID   string `json:"memory_id"`
	Timestamp  string `json:"timestamp"`
	Importance int    `json:"importance"`
}

// RecallByTimeInput is the input schema for the recall_by_time tool.
type RecallByTimeInput struct {
	TimePeriod    string   `json:"time_period" jsonschema:"today, yesterday, last_week, last_month, last_year or YYYY-MM-DD:YYYY-MM-DD"`
	Topics        []string `json:"topics,omitempty" jsonschema:"restrict to these topics"`
	MinImportance int      `json:"min_importance,omitempty" jsonschema:"minimum importance (1-10)"`
	Limit         int      `json:"limit,omitempty" jsonschema:"maximum memories to return (default 20)"`
}

// RecallByTimeOutput is the output schema for the recall_by_time tool.
type RecallByTimeOutput struct {
	TimePeriod string         `json:"time_period"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Count      int            `json:"count"`
	Memories   []MemoryOutput `json:"memories"`
}

// MemoryOutput is the recalled view of one memory.
type MemoryOutput struct {
	MemoryID   string   `json:"memory_id"`
	Content    string   `json:"content"`
	Timestamp  string   `json:"timestamp,omitempty"`
	Importance int      `json:"importance"`
	Topics     []string `json:"topics,omitempty"`
	Sentiment  string   `json:"sentiment,omitempty"`
}

// FindAssociationsInput is the input schema for the find_associations tool.
type FindAssociationsInput struct {
	Topics        []string `json:"topics,omitempty" jsonschema:"topics to match"`
	People        []string `json:"people,omitempty" jsonschema:"people to match"`
	Places        []string `json:"places,omitempty" jsonschema:"places to match"`
	Sentiment     string   `json:"sentiment,omitempty" jsonschema:"sentiment to match"`
	MinImportance int      `json:"min_importance,omitempty" jsonschema:"minimum importance (1-10)"`
	Limit         int      `json:"limit,omitempty" jsonschema:"maximum memories to return (default 20)"`
}

// FindAssociationsOutput is the output schema for the find_associations tool.
type FindAssociationsOutput struct {
	Count    int                `json:"count"`
	Memories []AssociatedOutput `json:"memories"`
}

// AssociatedOutput is a memory found through association.
type AssociatedOutput struct {
	MemoryID string `json:"memory_id"`
	Content  string `json:"content"`
}

// ReflectInput is the input schema for the reflect_on_memories tool.
type ReflectInput struct {
	Aspect     string `json:"aspect,omitempty" jsonschema:"topics, importance, sentiment, frequency, timeline or all (default all)"`
	TimePeriod string `json:"time_period,omitempty" jsonschema:"analysis period (default all time)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum memories to analyse"`
}

// ReflectOutput is the output schema for the reflect_on_memories tool.
type ReflectOutput struct {
	Aspect          string                `json:"aspect"`
	AnalysisPeriod  string                `json:"analysis_period"`
	TotalMemories   int                   `json:"total_memories"`
	TopTopics       []TopicCountOutput    `json:"top_topics,omitempty"`
	Importance      *ImportanceOutput     `json:"importance,omitempty"`
	Sentiments      map[string]int        `json:"sentiments,omitempty"`
	Access          *AccessOutput         `json:"access,omitempty"`
	Timeline        *TimelineOutput       `json:"timeline,omitempty"`
	Recommendations []string              `json:"recommendations,omitempty"`
}

// TopicCountOutput is a topic with its occurrence count.
type TopicCountOutput struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// ImportanceOutput summarises the importance distribution.
type ImportanceOutput struct {
	Average             float64 `json:"average"`
	Max                 int     `json:"max"`
	Min                 int     `json:"min"`
	HighImportanceCount int     `json:"high_importance_count"`
}

// AccessOutput summarises memory access frequency.
type AccessOutput struct {
	AverageAccesses float64 `json:"average_accesses"`
	MostAccessed    int     `json:"most_accessed"`
	RarelyAccessed  int     `json:"rarely_accessed"`
}

// TimelineOutput describes the temporal spread of memories.
type TimelineOutput struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
	SpanDays int    `json:"span_days"`
}

// UpdateImportanceInput is the input schema for the update_memory_importance tool.
type UpdateImportanceInput struct {
	MemoryID      string `json:"memory_id" jsonschema:"id of the memory to update"`
	NewImportance int    `json:"new_importance" jsonschema:"new importance from 1 to 10"`
	Reason        string `json:"reason,omitempty" jsonschema:"why the importance changed"`
}

// UpdateImportanceOutput is the output schema for the update_memory_importance tool.
type UpdateImportanceOutput struct {
	MemoryID      string `json:"memory_id"`
	OldImportance int    `json:"old_importance"`
	NewImportance int    `json:"new_importance"`
}

// registerMemoryTools registers the memory tool handlers.
func (s *Server) registerMemoryTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "store_memory",
		Description: "Store a memory with rich contextual metadata",
	}, s.handleStoreMemory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recall_by_time",
		Description: "Recall memories from a specific time period",
	}, s.handleRecallByTime)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_associations",
		Description: "Find memories associated with topics, people, places or sentiment",
	}, s.handleFindAssociations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reflect_on_memories",
		Description: "Analyse stored memories for patterns and insights",
	}, s.handleReflect)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_memory_importance",
		Description: "Change the importance of a stored memory",
	}, s.handleUpdateImportance)
}

func (s *Server) handleStoreMemory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StoreMemoryInput,
) (*mcp.CallToolResult, StoreMemoryOutput, error) {
	stored, err := s.ports.Memory.Store(ctx, driving.StoreMemoryInput{
		Content:    input.Content,
		Importance: input.Importance,
		Timestamp:  input.Timestamp,
		Topics:     input.Topics,
		People:     input.People,
		Places:     input.Places,
		Sentiment:  input.Sentiment,
		Source:     input.Source,
		RelatedTo:  input.RelatedTo,
	})
	if err != nil {
		return nil, StoreMemoryOutput{}, err
	}

	return nil, StoreMemoryOutput{
		MemoryID:   stored.ID,
		Timestamp:  stored.Timestamp,
		Importance: stored.Importance,
	}, nil
}

func (s *Server) handleRecallByTime(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecallByTimeInput,
) (*mcp.CallToolResult, RecallByTimeOutput, error) {
	recall, err := s.ports.Memory.RecallByTime(ctx, driving.TimeRecallQuery{
		Period:        input.TimePeriod,
		Topics:        input.Topics,
		MinImportance: input.MinImportance,
		Limit:         input.Limit,
	})
	if err != nil {
		return nil, RecallByTimeOutput{}, err
	}

	output := RecallByTimeOutput{
		TimePeriod: recall.Period,
		Start:      recall.Window.Start.Format(timeFormat),
		End:        recall.Window.End.Format(timeFormat),
		Count:      len(recall.Memories),
		Memories:   make([]MemoryOutput, len(recall.Memories)),
	}
	for i, m := range recall.Memories {
		output.Memories[i] = MemoryOutput{
			MemoryID:   m.ID,
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			Importance: m.Importance,
			Topics:     m.Topics,
			Sentiment:  m.Sentiment,
		}
	}
	return nil, output, nil
}

func (s *Server) handleFindAssociations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindAssociationsInput,
) (*mcp.CallToolResult, FindAssociationsOutput, error) {
	memories, err := s.ports.Memory.FindAssociations(ctx, driving.AssociationQuery{
		Topics:        input.Topics,
		People:        input.People,
		Places:        input.Places,
		Sentiment:     input.Sentiment,
		MinImportance: input.MinImportance,
		Limit:         input.Limit,
	})
	if err != nil {
		return nil, FindAssociationsOutput{}, err
	}

	output := FindAssociationsOutput{
		Count:    len(memories),
		Memories: make([]AssociatedOutput, len(memories)),
	}
	for i, m := range memories {
		output.Memories[i] = AssociatedOutput{MemoryID: m.ID, Content: m.Content}
	}
	return nil, output, nil
}

func (s *Server) handleReflect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReflectInput,
) (*mcp.CallToolResult, ReflectOutput, error) {
	aspect := input.Aspect
	if aspect == "" {
		aspect = "all"
	}

	reflection, err := s.ports.Memory.Reflect(ctx, aspect, input.TimePeriod, input.Limit)
	if err != nil {
		return nil, ReflectOutput{}, err
	}

	output := ReflectOutput{
		Aspect:          reflection.Aspect,
		AnalysisPeriod:  reflection.AnalysisPeriod,
		TotalMemories:   reflection.TotalMemories,
		Sentiments:      reflection.Sentiments,
		Recommendations: reflection.Recommendations,
	}
	for _, tc := range reflection.TopTopics {
		output.TopTopics = append(output.TopTopics, TopicCountOutput{Topic: tc.Topic, Count: tc.Count})
	}
	if imp := reflection.Importance; imp != nil {
		output.Importance = &ImportanceOutput{
			Average:             imp.Average,
			Max:                 imp.Max,
			Min:                 imp.Min,
			HighImportanceCount: imp.HighImportanceCount,
		}
	}
	if acc := reflection.Access; acc != nil {
		output.Access = &AccessOutput{
			AverageAccesses: acc.AverageAccesses,
			MostAccessed:    acc.MostAccessed,
			RarelyAccessed:  acc.RarelyAccessed,
		}
	}
	if tl := reflection.Timeline; tl != nil {
		output.Timeline = &TimelineOutput{
			Earliest: tl.Earliest,
			Latest:   tl.Latest,
			SpanDays: tl.SpanDays,
		}
	}
	return nil, output, nil
}

func (s *Server) handleUpdateImportance(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateImportanceInput,
) (*mcp.CallToolResult, UpdateImportanceOutput, error) {
	update, err := s.ports.Memory.UpdateImportance(ctx, input.MemoryID, input.NewImportance, input.Reason)
	if err != nil {
		return nil, UpdateImportanceOutput{}, err
	}

	return nil, UpdateImportanceOutput{
		MemoryID:      update.MemoryID,
		OldImportance: update.OldImportance,
		NewImportance: update.NewImportance,
	}, nil
}
