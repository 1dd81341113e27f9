package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driven"
	"github.com/recall-labs/recall/internal/core/ports/driving"
	"github.com/recall-labs/recall/internal/logger"
)

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// Metadata keys private to conversation records.
const (
	metaUserMessage       = "user_message"
	metaAssistantResponse = "assistant_response"
	metaUserSentiment     = "user_sentiment"
)

const defaultSessionID = "default"

// ConversationService records and recalls conversation turns.
type ConversationService struct {
	store     driven.EmbeddingsStore
	indexPath string
}

// NewConversationService creates a conversation service.
func NewConversationService(store driven.EmbeddingsStore, indexPath string) *ConversationService {
	return &ConversationService{store: store, indexPath: indexPath}
}

// StoreTurn saves one user/assistant exchange.
func (s *ConversationService) StoreTurn(ctx context.Context, input driving.TurnInput) (*driving.StoredTurn, error) {
	if input.UserMessage == "" || input.AssistantResponse == "" {
		return nil, fmt.Errorf("both user message and assistant response are required: %w", domain.ErrInvalidInput)
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	importance := input.Importance
	if importance == 0 {
		importance = defaultImportance
	}

	ts := now()
	timestamp := ts.Format(time.RFC3339Nano)
	text := fmt.Sprintf("User: %s\n\nAssistant: %s", input.UserMessage, input.AssistantResponse)

	metadata := map[string]any{
		domain.MetaType:       domain.TypeConversation,
		domain.MetaTimestamp:  timestamp,
		domain.MetaSessionID:  sessionID,
		metaUserMessage:       input.UserMessage,
		metaAssistantResponse: input.AssistantResponse,
		domain.MetaImportance: importance,
		domain.MetaTopics:     input.Topics,
	}
	if input.UserSentiment != "" {
		metadata[metaUserSentiment] = input.UserSentiment
	}
	for key, value := range input.Extra {
		metadata[key] = value
	}

	id := newID("conv", ts)
	record := domain.Record{ID: id, Text: text, Metadata: metadata}

	if err := s.store.Upsert(ctx, []domain.Record{record}); err != nil {
		return nil, fmt.Errorf("storing conversation turn: %w", err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return nil, err
	}

	logger.Info("Stored conversation turn %s", id)

	return &driving.StoredTurn{TurnID: id, SessionID: sessionID, Timestamp: timestamp}, nil
}

// History returns the most recent matching turns, oldest first so callers
// can replay the conversation flow.
func (s *ConversationService) History(ctx context.Context, query driving.HistoryQuery) ([]driving.ConversationTurn, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := domain.Filter{
		Types:       []string{domain.TypeConversation},
		SessionID:   query.SessionID,
		Topics:      query.Topics,
		NewestFirst: true,
		Limit:       limit,
	}
	if query.Since != "" {
		since, err := domain.ParseTimestamp(query.Since)
		if err != nil {
			return nil, fmt.Errorf("parsing since %q: %w", query.Since, domain.ErrInvalidInput)
		}
		filter.Since = since
	}

	records, err := s.store.Filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("recalling conversation history: %w", err)
	}

	turns := make([]driving.ConversationTurn, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		turns = append(turns, turnFromRecord(records[i]))
	}
	return turns, nil
}

// SummarizeSession aggregates a session's turns into a summary.
func (s *ConversationService) SummarizeSession(ctx context.Context, sessionID string, save bool) (*driving.SessionSummary, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required: %w", domain.ErrInvalidInput)
	}

	turns, err := s.History(ctx, driving.HistoryQuery{SessionID: sessionID, Limit: 100})
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, fmt.Errorf("session %q has no recorded conversations: %w", sessionID, domain.ErrNotFound)
	}

	var allTopics []string
	sentiments := map[string]int{"positive": 0, "negative": 0, "neutral": 0}
	var highImportance []driving.ConversationTurn

	for _, turn := range turns {
		allTopics = append(allTopics, turn.Topics...)
		if _, tracked := sentiments[turn.UserSentiment]; tracked {
			sentiments[turn.UserSentiment]++
		}
		if turn.Importance >= 7 {
			highImportance = append(highImportance, turn)
		}
	}
	if len(highImportance) > 5 {
		highImportance = highImportance[:5]
	}

	counts := make(map[string]int)
	for _, topic := range allTopics {
		counts[topic]++
	}
	topTopics := topCounts(counts, 10)

	overall := "neutral"
	best := -1
	for _, sentiment := range []string{"positive", "negative", "neutral"} {
		if sentiments[sentiment] > best {
			best = sentiments[sentiment]
			overall = sentiment
		}
	}

	summary := &driving.SessionSummary{
		SessionID:           sessionID,
		TurnCount:           len(turns),
		Start:               turns[0].Timestamp,
		End:                 turns[len(turns)-1].Timestamp,
		TopTopics:           topTopics,
		OverallSentiment:    overall,
		Sentiments:          sentiments,
		HighImportanceTurns: highImportance,
		GeneratedAt:         now().Format(time.RFC3339Nano),
	}

	if save {
		if err := s.saveSummary(ctx, summary); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// Search finds conversations semantically related to the query.
func (s *ConversationService) Search(ctx context.Context, query driving.ConversationQuery) ([]driving.ConversationMatch, error) {
	if query.Query == "" {
		return nil, fmt.Errorf("search query is empty: %w", domain.ErrInvalidInput)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	results, err := s.store.Search(ctx, query.Query, domain.SearchOptions{
		Limit:         limit,
		Types:         []string{domain.TypeConversation},
		MinImportance: query.MinImportance,
		SessionID:     query.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("searching conversations: %w", err)
	}

	matches := make([]driving.ConversationMatch, 0, len(results))
	for _, result := range results {
		matches = append(matches, driving.ConversationMatch{
			ConversationTurn: turnFromRecord(result.Record),
			Score:            result.Score,
		})
	}
	return matches, nil
}

// saveSummary stores a session summary back into the index.
func (s *ConversationService) saveSummary(ctx context.Context, summary *driving.SessionSummary) error {
	ts := now()
	id := fmt.Sprintf("summary_%s_%s", summary.SessionID, ts.Format("20060102_150405"))

	var topics []string
	for _, tc := range summary.TopTopics {
		topics = append(topics, tc.Topic)
		if len(topics) == 5 {
			break
		}
	}

	text := fmt.Sprintf("Session Summary: %s\n\nTurns: %d\nTopics: %s\nSentiment: %s\n",
		summary.SessionID, summary.TurnCount, strings.Join(topics, ", "), summary.OverallSentiment)

	record := domain.Record{
		ID:   id,
		Text: text,
		Metadata: map[string]any{
			domain.MetaType:      domain.TypeConversationSummary,
			domain.MetaSessionID: summary.SessionID,
			domain.MetaTimestamp: ts.Format(time.RFC3339Nano),
			domain.MetaTopics:    topics,
		},
	}

	if err := s.store.Upsert(ctx, []domain.Record{record}); err != nil {
		return fmt.Errorf("saving session summary: %w", err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return err
	}

	summary.SavedAs = id
	return nil
}

// turnFromRecord rebuilds a conversation turn from its stored metadata.
func turnFromRecord(rec domain.Record) driving.ConversationTurn {
	return driving.ConversationTurn{
		TurnID:            rec.ID,
		Timestamp:         domain.MetaString(rec.Metadata, domain.MetaTimestamp, ""),
		SessionID:         domain.MetaString(rec.Metadata, domain.MetaSessionID, ""),
		UserMessage:       domain.MetaString(rec.Metadata, metaUserMessage, ""),
		AssistantResponse: domain.MetaString(rec.Metadata, metaAssistantResponse, ""),
		Topics:            domain.MetaStrings(rec.Metadata, domain.MetaTopics),
		Importance:        domain.MetaInt(rec.Metadata, domain.MetaImportance, 0),
		UserSentiment:     domain.MetaString(rec.Metadata, metaUserSentiment, ""),
	}
}

// topCounts converts a tally into a sorted top-n list, most frequent
// first, ties broken alphabetically.
func topCounts(counts map[string]int, n int) []driving.TopicCount {
	out := make([]driving.TopicCount, 0, len(counts))
	for topic, count := range counts {
		out = append(out, driving.TopicCount{Topic: topic, Count: count})
	}
	sortTopicCounts(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}
