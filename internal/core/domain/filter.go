package domain

import (
	"sort"
	"strings"
	"time"
)

// Filter is the structured metadata filter applied by the embeddings store:
// exact matches, substring matches on list fields, importance and
// timestamp ranges.
//
// Zero values disable the corresponding criterion.
type Filter struct {
	// Types matches records whose "type" metadata equals any entry.
	Types []string

	// SessionID matches the "session_id" metadata exactly.
	SessionID string

	// Topics, People and Places match if ANY listed value appears
	// (case-insensitive substring) in the corresponding metadata list.
	Topics []string
	People []string
	Places []string

	// Sentiment matches the "sentiment" metadata exactly.
	Sentiment string

	// MinImportance keeps records with importance >= this value.
	MinImportance int

	// Since and Until bound the "timestamp" metadata (inclusive).
	Since time.Time
	Until time.Time

	// NewestFirst sorts results by timestamp descending.
	NewestFirst bool

	// Limit caps the number of results. Zero means no cap.
	Limit int
}

// Empty reports whether no criterion is set.
func (f Filter) Empty() bool {
	return len(f.Types) == 0 && f.SessionID == "" &&
		len(f.Topics) == 0 && len(f.People) == 0 && len(f.Places) == 0 &&
		f.Sentiment == "" && f.MinImportance == 0 &&
		f.Since.IsZero() && f.Until.IsZero()
}

// Matches reports whether a record satisfies every set criterion.
// Store adapters share this so that filter semantics cannot drift
// between backends.
func (f Filter) Matches(rec Record) bool {
	if len(f.Types) > 0 {
		typ := MetaString(rec.Metadata, MetaType, "")
		found := false
		for _, t := range f.Types {
			if typ == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.SessionID != "" && MetaString(rec.Metadata, MetaSessionID, "") != f.SessionID {
		return false
	}

	if len(f.Topics) > 0 && !anySubstring(MetaStrings(rec.Metadata, MetaTopics), f.Topics) {
		return false
	}
	if len(f.People) > 0 && !anySubstring(MetaStrings(rec.Metadata, MetaPeople), f.People) {
		return false
	}
	if len(f.Places) > 0 && !anySubstring(MetaStrings(rec.Metadata, MetaPlaces), f.Places) {
		return false
	}

	if f.Sentiment != "" && MetaString(rec.Metadata, MetaSentiment, "") != f.Sentiment {
		return false
	}

	if f.MinImportance > 0 && MetaInt(rec.Metadata, MetaImportance, 0) < f.MinImportance {
		return false
	}

	if !f.Since.IsZero() || !f.Until.IsZero() {
		ts, ok := RecordTimestamp(rec)
		if !ok {
			return false
		}
		if !f.Since.IsZero() && ts.Before(f.Since) {
			return false
		}
		if !f.Until.IsZero() && ts.After(f.Until) {
			return false
		}
	}

	return true
}

// Apply filters, sorts and truncates records according to f.
func (f Filter) Apply(records []Record) []Record {
	var out []Record
	for _, rec := range records {
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	if f.NewestFirst {
		SortByTimestamp(out, true)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// RecordTimestamp parses the record's "timestamp" metadata.
func RecordTimestamp(rec Record) (time.Time, bool) {
	raw := MetaString(rec.Metadata, MetaTimestamp, "")
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// ParseTimestamp parses the timestamp formats records carry: RFC 3339 with
// or without offset, and bare dates.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: time.RFC3339, Value: raw}
}

// SortByTimestamp orders records by their timestamp metadata. Records
// without a parseable timestamp sort last.
func SortByTimestamp(records []Record, newestFirst bool) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, iok := RecordTimestamp(records[i])
		tj, jok := RecordTimestamp(records[j])
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		if newestFirst {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
}

// anySubstring reports whether any needle appears, case-insensitively,
// within any value of haystack.
func anySubstring(haystack, needles []string) bool {
	for _, needle := range needles {
		n := strings.ToLower(needle)
		for _, value := range haystack {
			if strings.Contains(strings.ToLower(value), n) {
				return true
			}
		}
	}
	return false
}
