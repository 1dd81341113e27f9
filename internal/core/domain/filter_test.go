package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, md map[string]any) Record {
	return Record{ID: id, Text: "text", Metadata: md}
}

func TestFilter_Empty(t *testing.T) {
	assert.True(t, Filter{}.Empty())
	assert.True(t, Filter{NewestFirst: true, Limit: 5}.Empty())
	assert.False(t, Filter{Types: []string{TypeMemory}}.Empty())
	assert.False(t, Filter{Sentiment: "positive"}.Empty())
	assert.False(t, Filter{Since: time.Now()}.Empty())
}

func TestFilter_MatchesTypes(t *testing.T) {
	f := Filter{Types: []string{TypeMemory, TypeQuickCapture}}

	assert.True(t, f.Matches(rec("a", map[string]any{MetaType: TypeMemory})))
	assert.True(t, f.Matches(rec("b", map[string]any{MetaType: TypeQuickCapture})))
	assert.False(t, f.Matches(rec("c", map[string]any{MetaType: TypeDocument})))
	assert.False(t, f.Matches(rec("d", nil)))
}

func TestFilter_MatchesListFields(t *testing.T) {
	record := rec("a", map[string]any{
		MetaTopics: []string{"go", "concurrency"},
		MetaPeople: []any{"Alice", "Bob"},
	})

	assert.True(t, Filter{Topics: []string{"go"}}.Matches(record))
	// Case-insensitive substring semantics.
	assert.True(t, Filter{People: []string{"alice"}}.Matches(record))
	assert.True(t, Filter{Topics: []string{"concur"}}.Matches(record))
	// ANY listed value suffices.
	assert.True(t, Filter{Topics: []string{"rust", "go"}}.Matches(record))
	assert.False(t, Filter{Topics: []string{"rust"}}.Matches(record))
	assert.False(t, Filter{Places: []string{"office"}}.Matches(record))
}

func TestFilter_MatchesImportanceAndSentiment(t *testing.T) {
	record := rec("a", map[string]any{
		MetaImportance: 7,
		MetaSentiment:  "positive",
	})

	assert.True(t, Filter{MinImportance: 7}.Matches(record))
	assert.False(t, Filter{MinImportance: 8}.Matches(record))
	assert.True(t, Filter{Sentiment: "positive"}.Matches(record))
	assert.False(t, Filter{Sentiment: "negative"}.Matches(record))

	// JSON round-trips store numbers as float64.
	asFloat := rec("b", map[string]any{MetaImportance: float64(7)})
	assert.True(t, Filter{MinImportance: 7}.Matches(asFloat))
}

func TestFilter_MatchesTimeWindow(t *testing.T) {
	record := rec("a", map[string]any{MetaTimestamp: "2025-07-15T12:00:00Z"})
	ts := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, Filter{Since: ts.Add(-time.Hour), Until: ts.Add(time.Hour)}.Matches(record))
	assert.False(t, Filter{Since: ts.Add(time.Hour)}.Matches(record))
	assert.False(t, Filter{Until: ts.Add(-time.Hour)}.Matches(record))

	// Records without a timestamp never match a time-bounded filter.
	assert.False(t, Filter{Since: ts}.Matches(rec("b", nil)))
}

func TestFilter_Apply(t *testing.T) {
	records := []Record{
		rec("old", map[string]any{MetaType: TypeMemory, MetaTimestamp: "2025-07-01T00:00:00Z"}),
		rec("new", map[string]any{MetaType: TypeMemory, MetaTimestamp: "2025-07-10T00:00:00Z"}),
		rec("doc", map[string]any{MetaType: TypeDocument, MetaTimestamp: "2025-07-05T00:00:00Z"}),
	}

	out := Filter{Types: []string{TypeMemory}, NewestFirst: true, Limit: 1}.Apply(records)

	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].ID)
}

func TestSortByTimestamp_UnparseableLast(t *testing.T) {
	records := []Record{
		rec("none", nil),
		rec("b", map[string]any{MetaTimestamp: "2025-07-02T00:00:00Z"}),
		rec("a", map[string]any{MetaTimestamp: "2025-07-01T00:00:00Z"}),
	}

	SortByTimestamp(records, false)

	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "none", records[2].ID)
}

func TestRecordTimestamp(t *testing.T) {
	ts, ok := RecordTimestamp(rec("a", map[string]any{MetaTimestamp: "2025-07-15"}))
	require.True(t, ok)
	assert.Equal(t, 15, ts.Day())

	_, ok = RecordTimestamp(rec("b", map[string]any{MetaTimestamp: "garbage"}))
	assert.False(t, ok)

	_, ok = RecordTimestamp(rec("c", nil))
	assert.False(t, ok)
}
