package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-labs/recall/internal/core/ports/driving"
)

// StoreTurnInput is the input schema for the store_conversation_turn tool.
type StoreTurnInput struct {
	UserMessage       string   `json:"user_message" jsonschema:"what the user said"`
	AssistantResponse string   `json:"assistant_response" jsonschema:"what the assistant replied"`
	SessionID         string   `json:"session_id,omitempty" jsonschema:"conversation session id (default 'default')"`
	Topics            []string `json:"topics,omitempty" jsonschema:"topics discussed in this turn"`
	Importance        int      `json:"importance,omitempty" jsonschema:"importance from 1 to 10 (default 5)"`
	UserSentiment     string   `json:"user_sentiment,omitempty" jsonschema:"user sentiment: positive, negative or neutral"`
}

// StoreTurnOutput is the output schema for the store_conversation_turn tool.
type StoreTurnOutput struct {
	TurnID    string `json:"turn_id"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// HistoryInput is the input schema for the recall_conversation_history tool.
type HistoryInput struct {
	SessionID string   `json:"session_id,omitempty" jsonschema:"restrict to one session"`
	Topics    []string `json:"topics,omitempty" jsonschema:"restrict to these topics"`
	Since     string   `json:"since,omitempty" jsonschema:"only turns at or after this RFC 3339 timestamp"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum turns to return (default 20)"`
}

// HistoryOutput is the output schema for the recall_conversation_history tool.
type HistoryOutput struct {
	Count int          `json:"count"`
	Turns []TurnOutput `json:"turns"`
}

// TurnOutput is one recalled conversation exchange.
type TurnOutput struct {
	TurnID            string   `json:"turn_id"`
	Timestamp         string   `json:"timestamp,omitempty"`
	SessionID         string   `json:"session_id"`
	UserMessage       string   `json:"user_message"`
	AssistantResponse string   `json:"assistant_response"`
	Topics            []string `json:"topics,omitempty"`
	Importance        int      `json:"importance"`
	UserSentiment     string   `json:"user_sentiment,omitempty"`
}

// SummarizeSessionInput is the input schema for the summarize_conversation_session tool.
type SummarizeSessionInput struct {
	SessionID   string `json:"session_id" jsonschema:"session to summarise"`
	SaveSummary bool   `json:"save_summary,omitempty" jsonschema:"store the summary back into the index"`
}

// SummarizeSessionOutput is the output schema for the summarize_conversation_session tool.
type SummarizeSessionOutput struct {
	SessionID           string             `json:"session_id"`
	TurnCount           int                `json:"turn_count"`
	Start               string             `json:"start"`
	End                 string             `json:"end"`
	TopTopics           []TopicCountOutput `json:"top_topics,omitempty"`
	OverallSentiment    string             `json:"overall_sentiment"`
	Sentiments          map[string]int     `json:"sentiments"`
	HighImportanceTurns []TurnOutput       `json:"high_importance_turns,omitempty"`
	GeneratedAt         string             `json:"generated_at"`
	SavedAs             string             `json:"saved_as,omitempty"`
}

// SearchConversationsInput is the input schema for the search_conversations tool.
type SearchConversationsInput struct {
	Query         string `json:"query" jsonschema:"what to search past conversations for"`
	SessionID     string `json:"session_id,omitempty" jsonschema:"restrict to one session"`
	MinImportance int    `json:"min_importance,omitempty" jsonschema:"minimum importance (1-10)"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum matches to return (default 10)"`
}

// SearchConversationsOutput is the output schema for the search_conversations tool.
type SearchConversationsOutput struct {
	Count   int                 `json:"count"`
	Matches []TurnSearchOutput  `json:"matches"`
}

// TurnSearchOutput is a conversation found by semantic search.
type TurnSearchOutput struct {
	TurnOutput
	Score float64 `json:"score"`
}

// registerConversationTools registers the conversation tool handlers.
func (s *Server) registerConversationTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "store_conversation_turn",
		Description: "Store one user/assistant conversation exchange",
	}, s.handleStoreTurn)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recall_conversation_history",
		Description: "Recall past conversation turns, oldest first",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_conversation_session",
		Description: "Summarise a conversation session's topics, sentiment and key turns",
	}, s.handleSummarizeSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_conversations",
		Description: "Search past conversations semantically",
	}, s.handleSearchConversations)
}

func (s *Server) handleStoreTurn(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StoreTurnInput,
) (*mcp.CallToolResult, StoreTurnOutput, error) {
	turn, err := s.ports.Conversation.StoreTurn(ctx, driving.TurnInput{
		UserMessage:       input.UserMessage,
		AssistantResponse: input.AssistantResponse,
		SessionID:         input.SessionID,
		Topics:            input.Topics,
		Importance:        input.Importance,
		UserSentiment:     input.UserSentiment,
	})
	if err != nil {
		return nil, StoreTurnOutput{}, err
	}

	return nil, StoreTurnOutput{
		TurnID:    turn.TurnID,
		SessionID: turn.SessionID,
		Timestamp: turn.Timestamp,
	}, nil
}

func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	turns, err := s.ports.Conversation.History(ctx, driving.HistoryQuery{
		SessionID: input.SessionID,
		Topics:    input.Topics,
		Since:     input.Since,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	output := HistoryOutput{
		Count: len(turns),
		Turns: make([]TurnOutput, len(turns)),
	}
	for i, turn := range turns {
		output.Turns[i] = turnOutput(turn)
	}
	return nil, output, nil
}

func (s *Server) handleSummarizeSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeSessionInput,
) (*mcp.CallToolResult, SummarizeSessionOutput, error) {
	summary, err := s.ports.Conversation.SummarizeSession(ctx, input.SessionID, input.SaveSummary)
	if err != nil {
		return nil, SummarizeSessionOutput{}, err
	}

	output := SummarizeSessionOutput{
		SessionID:        summary.SessionID,
		TurnCount:        summary.TurnCount,
		Start:            summary.Start,
		End:              summary.End,
		OverallSentiment: summary.OverallSentiment,
		Sentiments:       summary.Sentiments,
		GeneratedAt:      summary.GeneratedAt,
		SavedAs:          summary.SavedAs,
	}
	for _, tc := range summary.TopTopics {
		output.TopTopics = append(output.TopTopics, TopicCountOutput{Topic: tc.Topic, Count: tc.Count})
	}
	for _, turn := range summary.HighImportanceTurns {
		output.HighImportanceTurns = append(output.HighImportanceTurns, turnOutput(turn))
	}
	return nil, output, nil
}

func (s *Server) handleSearchConversations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchConversationsInput,
) (*mcp.CallToolResult, SearchConversationsOutput, error) {
	matches, err := s.ports.Conversation.Search(ctx, driving.ConversationQuery{
		Query:         input.Query,
		SessionID:     input.SessionID,
		MinImportance: input.MinImportance,
		Limit:         input.Limit,
	})
	if err != nil {
		return nil, SearchConversationsOutput{}, err
	}

	output := SearchConversationsOutput{
		Count:   len(matches),
		Matches: make([]TurnSearchOutput, len(matches)),
	}
	for i, match := range matches {
		output.Matches[i] = TurnSearchOutput{
			TurnOutput: turnOutput(match.ConversationTurn),
			Score:      match.Score,
		}
	}
	return nil, output, nil
}

// turnOutput maps a driving turn to its wire representation.
func turnOutput(turn driving.ConversationTurn) TurnOutput {
	return TurnOutput{
		TurnID:            turn.TurnID,
		Timestamp:         turn.Timestamp,
		SessionID:         turn.SessionID,
		UserMessage:       turn.UserMessage,
		AssistantResponse: turn.AssistantResponse,
		Topics:            turn.Topics,
		Importance:        turn.Importance,
		UserSentiment:     turn.UserSentiment,
	}
}
