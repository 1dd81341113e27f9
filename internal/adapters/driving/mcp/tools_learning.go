package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-labs/recall/internal/core/ports/driving"
)

// QuickCaptureInput is the input schema for the quick_capture tool.
type QuickCaptureInput struct {
	Content     string   `json:"content" jsonschema:"the learning to capture"`
	Context     string   `json:"context,omitempty" jsonschema:"where this learning came up"`
	Tags        []string `json:"tags,omitempty" jsonschema:"quick tags for later retrieval"`
	ExpandLater *bool    `json:"expand_later,omitempty" jsonschema:"flag for later expansion (default true)"`
}

// QuickCaptureOutput is the output schema for the quick_capture tool.
type QuickCaptureOutput struct {
	CaptureID   string `json:"capture_id"`
	ExpandLater bool   `json:"expand_later"`
}

// ExpandLearningInput is the input schema for the expand_learning tool.
type ExpandLearningInput struct {
	CaptureID       string   `json:"capture_id" jsonschema:"id of the quick capture to expand"`
	ExpandedContent string   `json:"expanded_content" jsonschema:"the full learning content"`
	Importance      int      `json:"importance,omitempty" jsonschema:"importance from 1 to 10 (default 7)"`
	Topics          []string `json:"topics,omitempty" jsonschema:"topics (default: the capture's tags)"`
	RelatedTo       []string `json:"related_to,omitempty" jsonschema:"ids of related records"`
	KeyInsight      string   `json:"key_insight,omitempty" jsonschema:"the single most important takeaway"`
}

// ExpandLearningOutput is the output schema for the expand_learning tool.
type ExpandLearningOutput struct {
	LearningID string `json:"learning_id"`
	OriginalID string `json:"original_id"`
	KeyInsight string `json:"key_insight,omitempty"`
}

// ReinforceLearningInput is the input schema for the reinforce_learning tool.
type ReinforceLearningInput struct {
	LearningID   string `json:"learning_id" jsonschema:"id of the learning being used"`
	UsageContext string `json:"usage_context,omitempty" jsonschema:"how the learning was applied"`
	MasteryLevel int    `json:"mastery_level,omitempty" jsonschema:"self-assessed mastery from 1 to 10"`
}

// ReinforceLearningOutput is the output schema for the reinforce_learning tool.
type ReinforceLearningOutput struct {
	LearningID         string `json:"learning_id"`
	ReinforcementCount int    `json:"reinforcement_count"`
	Importance         int    `json:"importance"`
	MasteryLevel       int    `json:"mastery_level,omitempty"`
}

// TrackProgressInput is the input schema for the track_learning_progress tool.
type TrackProgressInput struct {
	TimePeriod string `json:"time_period,omitempty" jsonschema:"today, last_week or last_month (default last_week)"`
}

// TrackProgressOutput is the output schema for the track_learning_progress tool.
type TrackProgressOutput struct {
	Period             string              `json:"period"`
	TotalCaptures      int                 `json:"total_captures"`
	TotalExpanded      int                 `json:"total_expanded"`
	PendingExpansion   int                 `json:"pending_expansion"`
	NeedsReinforcement []DebtOutput        `json:"needs_reinforcement,omitempty"`
	StreakDays         int                 `json:"streak_days"`
	ActiveTopics       []TopicCountOutput  `json:"active_topics,omitempty"`
	DailyActivity      []DayOutput         `json:"daily_activity,omitempty"`
	Recommendations    []string            `json:"recommendations,omitempty"`
}

// DebtOutput is a learning below the reinforcement target.
type DebtOutput struct {
	LearningID         string `json:"learning_id"`
	Content            string `json:"content"`
	ReinforcementCount int    `json:"reinforcement_count"`
}

// DayOutput counts learnings captured on one day.
type DayOutput struct {
	Date      string `json:"date"`
	Learnings int    `json:"learnings"`
}

// CreatePathInput is the input schema for the create_learning_path tool.
type CreatePathInput struct {
	Goal          string   `json:"goal" jsonschema:"the learning goal"`
	CurrentLevel  string   `json:"current_level,omitempty" jsonschema:"beginner, intermediate or advanced (default beginner)"`
	RelatedTopics []string `json:"related_topics,omitempty" jsonschema:"topics already known or related"`
}

// CreatePathOutput is the output schema for the create_learning_path tool.
type CreatePathOutput struct {
	PathID       string            `json:"path_id"`
	Goal         string            `json:"goal"`
	CurrentLevel string            `json:"current_level"`
	KnownTopics  []string          `json:"known_topics,omitempty"`
	Milestones   []MilestoneOutput `json:"milestones"`
}

// MilestoneOutput is one phase of a learning path.
type MilestoneOutput struct {
	Phase       string   `json:"phase"`
	Description string   `json:"description"`
	Tasks       []string `json:"tasks"`
}

// registerLearningTools registers the learning tool handlers.
func (s *Server) registerLearningTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quick_capture",
		Description: "Capture a learning moment with minimal friction",
	}, s.handleQuickCapture)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "expand_learning",
		Description: "Expand a quick capture into a full learning record",
	}, s.handleExpandLearning)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reinforce_learning",
		Description: "Record a usage of a learning to reinforce retention",
	}, s.handleReinforceLearning)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "track_learning_progress",
		Description: "Analyse learning activity, streaks and reinforcement debt",
	}, s.handleTrackProgress)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_learning_path",
		Description: "Build a milestone-based learning path toward a goal",
	}, s.handleCreatePath)
}

func (s *Server) handleQuickCapture(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuickCaptureInput,
) (*mcp.CallToolResult, QuickCaptureOutput, error) {
	expandLater := true
	if input.ExpandLater != nil {
		expandLater = *input.ExpandLater
	}

	capture, err := s.ports.Learning.QuickCapture(ctx, driving.CaptureInput{
		Content:     input.Content,
		Context:     input.Context,
		Tags:        input.Tags,
		ExpandLater: expandLater,
	})
	if err != nil {
		return nil, QuickCaptureOutput{}, err
	}

	return nil, QuickCaptureOutput{
		CaptureID:   capture.ID,
		ExpandLater: capture.ExpandLater,
	}, nil
}

func (s *Server) handleExpandLearning(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExpandLearningInput,
) (*mcp.CallToolResult, ExpandLearningOutput, error) {
	expanded, err := s.ports.Learning.Expand(ctx, driving.ExpandInput{
		CaptureID:       input.CaptureID,
		ExpandedContent: input.ExpandedContent,
		Importance:      input.Importance,
		Topics:          input.Topics,
		RelatedTo:       input.RelatedTo,
		KeyInsight:      input.KeyInsight,
	})
	if err != nil {
		return nil, ExpandLearningOutput{}, err
	}

	return nil, ExpandLearningOutput{
		LearningID: expanded.ExpandedID,
		OriginalID: expanded.OriginalID,
		KeyInsight: expanded.KeyInsight,
	}, nil
}

func (s *Server) handleReinforceLearning(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReinforceLearningInput,
) (*mcp.CallToolResult, ReinforceLearningOutput, error) {
	result, err := s.ports.Learning.Reinforce(ctx, driving.ReinforceInput{
		LearningID:   input.LearningID,
		UsageContext: input.UsageContext,
		MasteryLevel: input.MasteryLevel,
	})
	if err != nil {
		return nil, ReinforceLearningOutput{}, err
	}

	return nil, ReinforceLearningOutput{
		LearningID:         result.LearningID,
		ReinforcementCount: result.ReinforcementCount,
		Importance:         result.Importance,
		MasteryLevel:       result.MasteryLevel,
	}, nil
}

func (s *Server) handleTrackProgress(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TrackProgressInput,
) (*mcp.CallToolResult, TrackProgressOutput, error) {
	progress, err := s.ports.Learning.TrackProgress(ctx, input.TimePeriod)
	if err != nil {
		return nil, TrackProgressOutput{}, err
	}

	output := TrackProgressOutput{
		Period:           progress.Period,
		TotalCaptures:    progress.TotalCaptures,
		TotalExpanded:    progress.TotalExpanded,
		PendingExpansion: progress.PendingExpansion,
		StreakDays:       progress.StreakDays,
		Recommendations:  progress.Recommendations,
	}
	for _, debt := range progress.NeedsReinforcement {
		output.NeedsReinforcement = append(output.NeedsReinforcement, DebtOutput{
			LearningID:         debt.ID,
			Content:            debt.Content,
			ReinforcementCount: debt.ReinforcementCount,
		})
	}
	for _, tc := range progress.ActiveTopics {
		output.ActiveTopics = append(output.ActiveTopics, TopicCountOutput{Topic: tc.Topic, Count: tc.Count})
	}
	for _, day := range progress.DailyActivity {
		output.DailyActivity = append(output.DailyActivity, DayOutput{Date: day.Date, Learnings: day.Learnings})
	}
	return nil, output, nil
}

func (s *Server) handleCreatePath(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreatePathInput,
) (*mcp.CallToolResult, CreatePathOutput, error) {
	path, err := s.ports.Learning.CreatePath(ctx, driving.PathInput{
		Goal:          input.Goal,
		CurrentLevel:  input.CurrentLevel,
		RelatedTopics: input.RelatedTopics,
	})
	if err != nil {
		return nil, CreatePathOutput{}, err
	}

	output := CreatePathOutput{
		PathID:       path.PathID,
		Goal:         path.Goal,
		CurrentLevel: path.CurrentLevel,
		KnownTopics:  path.KnownTopics,
		Milestones:   make([]MilestoneOutput, len(path.Milestones)),
	}
	for i, m := range path.Milestones {
		output.Milestones[i] = MilestoneOutput{
			Phase:       m.Phase,
			Description: m.Description,
			Tasks:       m.Tasks,
		}
	}
	return nil, output, nil
}
