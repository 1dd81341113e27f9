package driving

import "context"

// ConversationService records and recalls conversation turns across sessions.
type ConversationService interface {
	// StoreTurn saves one user/assistant exchange.
	StoreTurn(ctx context.Context, input TurnInput) (*StoredTurn, error)

	// History returns past turns, oldest first, with optional filters.
	History(ctx context.Context, query HistoryQuery) ([]ConversationTurn, error)

	// SummarizeSession aggregates a session into a summary, optionally
	// saving it back to the store as a record.
	SummarizeSession(ctx context.Context, sessionID string, save bool) (*SessionSummary, error)

	// Search finds past conversations semantically related to query.
	Search(ctx context.Context, query ConversationQuery) ([]ConversationMatch, error)
}

// TurnInput is one conversation exchange to store.
type TurnInput struct {
	UserMessage       string
	AssistantResponse string
	SessionID         string
	Topics            []string
	Importance        int
	UserSentiment     string
	Extra             map[string]any
}

// StoredTurn identifies a freshly stored conversation turn.
type StoredTurn struct {
	TurnID    string
	SessionID string
	Timestamp string
}

// HistoryQuery filters conversation history.
type HistoryQuery struct {
	SessionID string
	Topics    []string
	Since     string
	Limit     int
}

// ConversationTurn is a recalled conversation exchange.
type ConversationTurn struct {
	TurnID            string
	Timestamp         string
	SessionID         string
	UserMessage       string
	AssistantResponse string
	Topics            []string
	Importance        int
	UserSentiment     string
}

// SessionSummary aggregates a conversation session.
type SessionSummary struct {
	SessionID            string
	TurnCount            int
	Start                string
	End                  string
	TopTopics            []TopicCount
	OverallSentiment     string
	Sentiments           map[string]int
	HighImportanceTurns  []ConversationTurn
	GeneratedAt          string
	SavedAs              string
}

// ConversationQuery is a semantic search over conversation history.
type ConversationQuery struct {
	Query         string
	SessionID     string
	MinImportance int
	Limit         int
}

// ConversationMatch is a conversation found by semantic search.
type ConversationMatch struct {
	ConversationTurn
	Score float64
}
