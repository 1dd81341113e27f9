package driving

import "context"

// LearningService supports incremental knowledge acquisition: quick capture,
// later expansion, reinforcement and progress tracking.
type LearningService interface {
	// QuickCapture saves a learning moment with minimal metadata.
	QuickCapture(ctx context.Context, input CaptureInput) (*Capture, error)

	// Expand turns a quick capture into a full learning record and marks
	// the original as expanded.
	Expand(ctx context.Context, input ExpandInput) (*ExpandedLearning, error)

	// Reinforce records a usage of a learning, bumping its reinforcement
	// count and importance.
	Reinforce(ctx context.Context, input ReinforceInput) (*Reinforcement, error)

	// TrackProgress analyses learning activity over a period.
	TrackProgress(ctx context.Context, timePeriod string) (*LearningProgress, error)

	// CreatePath builds a milestone-based learning path toward a goal.
	CreatePath(ctx context.Context, input PathInput) (*LearningPath, error)
}

// CaptureInput is a quick learning capture.
type CaptureInput struct {
	Content     string
	Context     string
	Tags        []string
	ExpandLater bool
}

// Capture identifies a stored quick capture.
type Capture struct {
	ID          string
	ExpandLater bool
}

// ExpandInput enriches a quick capture into a full learning.
type ExpandInput struct {
	CaptureID       string
	ExpandedContent string
	Importance      int
	Topics          []string
	RelatedTo       []string
	KeyInsight      string
}

// ExpandedLearning links an expansion to its original capture.
type ExpandedLearning struct {
	ExpandedID string
	OriginalID string
	KeyInsight string
}

// ReinforceInput records one usage of a learning.
type ReinforceInput struct {
	LearningID   string
	UsageContext string
	MasteryLevel int
}

// Reinforcement reports the state of a learning after reinforcement.
type Reinforcement struct {
	LearningID         string
	ReinforcementCount int
	Importance         int
	MasteryLevel       int
}

// LearningProgress summarises learning activity over a period.
type LearningProgress struct {
	Period             string
	TotalCaptures      int
	TotalExpanded      int
	PendingExpansion   int
	NeedsReinforcement []ReinforcementDebt
	StreakDays         int
	ActiveTopics       []TopicCount
	DailyActivity      []DayActivity
	Recommendations    []string
}

// ReinforcementDebt is a learning below the reinforcement target.
type ReinforcementDebt struct {
	ID                 string
	Content            string
	ReinforcementCount int
}

// DayActivity counts learnings captured on one day.
type DayActivity struct {
	Date      string
	Learnings int
}

// PathInput describes a learning goal.
type PathInput struct {
	Goal          string
	CurrentLevel  string
	RelatedTopics []string
}

// LearningPath is a structured plan toward a learning goal.
type LearningPath struct {
	PathID       string
	Goal         string
	CurrentLevel string
	KnownTopics  []string
	Milestones   []Milestone
}

// Milestone is one phase of a learning path.
type Milestone struct {
	Phase       string
	Description string
	Tasks       []string
}
