package domain

import "fmt"

// Record is the unit passed to the embeddings store. Every memory,
// conversation turn, learning and knowledge-base segment is a Record.
type Record struct {
	// ID is the unique identifier within the store.
	ID string

	// Text is the indexed content.
	Text string

	// Metadata contains arbitrary key-value pairs. Values are JSON-encoded
	// at the store boundary, so only JSON-representable types belong here.
	Metadata map[string]any
}

// ScoredRecord is a record returned from a similarity search.
type ScoredRecord struct {
	Record
	Score float64
}

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results. Zero means the store default.
	Limit int

	// Types restricts results to records whose "type" metadata matches.
	Types []string

	// MinImportance filters out records below this importance. Zero disables.
	MinImportance int

	// SessionID restricts results to a conversation session.
	SessionID string
}

// Well-known metadata keys shared between services and store adapters.
const (
	MetaType          = "type"
	MetaTimestamp     = "timestamp"
	MetaCreatedAt     = "created_at"
	MetaImportance    = "importance"
	MetaTopics        = "topics"
	MetaPeople        = "people"
	MetaPlaces        = "places"
	MetaSentiment     = "sentiment"
	MetaSource        = "source"
	MetaSessionID     = "session_id"
	MetaCategory      = "category"
	MetaFilename      = "filename"
	MetaDirectory     = "directory"
	MetaSegmentIndex  = "segment_index"
	MetaTotalSegments = "total_segments"
)

// Record types stored in the MetaType field.
const (
	TypeMemory              = "memory"
	TypeConversation        = "conversation"
	TypeConversationSummary = "conversation_summary"
	TypeQuickCapture        = "quick_capture"
	TypeExpandedLearning    = "expanded_learning"
	TypeLearningPath        = "learning_path"
	TypeDocument            = "document"
)

// MetaString returns a string metadata value, or def if absent or not a string.
func MetaString(md map[string]any, key, def string) string {
	if md == nil {
		return def
	}
	if s, ok := md[key].(string); ok {
		return s
	}
	return def
}

// MetaInt returns an integer metadata value. JSON round-trips turn numbers
// into float64, so both representations are accepted.
func MetaInt(md map[string]any, key string, def int) int {
	if md == nil {
		return def
	}
	switch v := md[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// MetaFloat returns a float metadata value, or def when absent.
func MetaFloat(md map[string]any, key string, def float64) float64 {
	if md == nil {
		return def
	}
	switch v := md[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// MetaBool returns a boolean metadata value, or def when absent.
func MetaBool(md map[string]any, key string, def bool) bool {
	if md == nil {
		return def
	}
	if b, ok := md[key].(bool); ok {
		return b
	}
	return def
}

// MetaStrings returns a string-slice metadata value. JSON round-trips turn
// slices into []any, so both representations are accepted.
func MetaStrings(md map[string]any, key string) []string {
	if md == nil {
		return nil
	}
	switch v := md[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}

// CloneMetadata returns a shallow copy of md, never nil.
func CloneMetadata(md map[string]any) map[string]any {
	out := make(map[string]any, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
