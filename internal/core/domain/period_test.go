package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod_NamedPeriods(t *testing.T) {
	now := time.Date(2025, 7, 15, 14, 30, 0, 0, time.UTC)
	midnight := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		start  time.Time
		end    time.Time
	}{
		{"today", midnight, now},
		{"yesterday", midnight.AddDate(0, 0, -1), midnight},
		{"last_week", now.AddDate(0, 0, -7), now},
		{"last_month", now.AddDate(0, 0, -30), now},
		{"last_year", now.AddDate(0, 0, -365), now},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			p, err := ParsePeriod(tt.period, now)
			require.NoError(t, err)
			assert.Equal(t, tt.start, p.Start)
			assert.Equal(t, tt.end, p.End)
		})
	}
}

func TestParsePeriod_ExplicitRange(t *testing.T) {
	now := time.Date(2025, 7, 15, 14, 30, 0, 0, time.UTC)

	p, err := ParsePeriod("2025-01-01:2025-03-31", now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), p.End)
}

func TestParsePeriod_Invalid(t *testing.T) {
	now := time.Now()

	_, err := ParsePeriod("fortnight", now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParsePeriod("not-a-date:2025-01-01", now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParsePeriod("2025-01-01:not-a-date", now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseTimestamp_AcceptedLayouts(t *testing.T) {
	for _, raw := range []string{
		"2025-07-15T14:30:00Z",
		"2025-07-15T14:30:00.123456789",
		"2025-07-15T14:30:00",
		"2025-07-15",
	} {
		ts, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 2025, ts.Year())
		assert.Equal(t, time.July, ts.Month())
	}
}

func TestParseTimestamp_Rejected(t *testing.T) {
	_, err := ParseTimestamp("15/07/2025")
	assert.Error(t, err)
}
