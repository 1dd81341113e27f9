package domain

import (
	"fmt"
	"strings"
	"time"
)

// Period is a resolved time window for temporal recall.
type Period struct {
	Start time.Time
	End   time.Time
}

// ParsePeriod resolves a named period or an explicit date range relative
// to now. Accepted values: "today", "yesterday", "last_week", "last_month",
// "last_year", or "YYYY-MM-DD:YYYY-MM-DD".
func ParsePeriod(period string, now time.Time) (Period, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case "today":
		return Period{Start: midnight, End: now}, nil
	case "yesterday":
		return Period{Start: midnight.AddDate(0, 0, -1), End: midnight}, nil
	case "last_week":
		return Period{Start: now.AddDate(0, 0, -7), End: now}, nil
	case "last_month":
		return Period{Start: now.AddDate(0, 0, -30), End: now}, nil
	case "last_year":
		return Period{Start: now.AddDate(0, 0, -365), End: now}, nil
	}

	if strings.Contains(period, ":") {
		parts := strings.SplitN(period, ":", 2)
		start, err := ParseTimestamp(parts[0])
		if err != nil {
			return Period{}, fmt.Errorf("parsing range start %q: %w", parts[0], ErrInvalidInput)
		}
		end, err := ParseTimestamp(parts[1])
		if err != nil {
			return Period{}, fmt.Errorf("parsing range end %q: %w", parts[1], ErrInvalidInput)
		}
		return Period{Start: start, End: end}, nil
	}

	return Period{}, fmt.Errorf("unknown time period %q: %w", period, ErrInvalidInput)
}
