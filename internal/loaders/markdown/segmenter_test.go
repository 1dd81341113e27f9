package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_headingBoundaries(t *testing.T) {
	text := "Intro\n\n# H1\nA\n\n# H2\nB"

	segments := Segment(text, true, 1)

	require.Len(t, segments, 3)
	assert.Equal(t, "Intro", segments[0])
	assert.Equal(t, "# H1\nA", segments[1])
	assert.Equal(t, "# H2\nB", segments[2])
}

func TestSegment_paragraphMode(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph here.\n\n\nThird."

	segments := Segment(text, false, 1)

	require.Len(t, segments, 3)
	assert.Equal(t, "First paragraph here.", segments[0])
	assert.Equal(t, "Second paragraph here.", segments[1])
	assert.Equal(t, "Third.", segments[2])
}

func TestSegment_minLengthFiltering(t *testing.T) {
	// The short section is dropped; its siblings keep their relative order.
	text := "# Long Section\n" + strings.Repeat("content ", 20) + "\n\n# Short\nhi\n\n# Another Long Section\n" + strings.Repeat("content ", 20)

	segments := Segment(text, true, 100)

	require.Len(t, segments, 2)
	assert.True(t, strings.HasPrefix(segments[0], "# Long Section"))
	assert.True(t, strings.HasPrefix(segments[1], "# Another Long Section"))
}

func TestSegment_minLengthCountsRunes(t *testing.T) {
	// The accented section is 12 characters but 15 bytes. A byte-based
	// threshold would keep it; the character-based one drops it.
	text := "# Héading\nüü\n\n# Long Enough Section\n" + strings.Repeat("content ", 5)

	segments := Segment(text, true, 13)

	require.Len(t, segments, 1)
	assert.True(t, strings.HasPrefix(segments[0], "# Long Enough Section"))
}

func TestSegment_neverEmpty(t *testing.T) {
	inputs := []string{
		"short",
		"# Heading only",
		"no headings at all, just a modest paragraph",
		"a\n\nb\n\nc",
	}

	for _, text := range inputs {
		for _, byHeadings := range []bool{true, false} {
			for _, minLen := range []int{1, 100, 10000} {
				segments := Segment(text, byHeadings, minLen)
				require.NotEmpty(t, segments,
					"text=%q byHeadings=%v minLen=%d", text, byHeadings, minLen)
			}
		}
	}
}

func TestSegment_fallbackReturnsWholeText(t *testing.T) {
	text := "tiny"

	segments := Segment(text, true, 100)

	require.Len(t, segments, 1)
	assert.Equal(t, text, segments[0])
}

func TestSegment_textBeforeFirstHeading(t *testing.T) {
	text := "# Only\nbody"

	segments := Segment(text, true, 1)

	require.Len(t, segments, 1)
	assert.Equal(t, "# Only\nbody", segments[0])
}

func TestSegment_deterministic(t *testing.T) {
	text := "Intro\n\n# A\none\n\n# B\ntwo"

	first := Segment(text, true, 1)
	second := Segment(text, true, 1)

	assert.Equal(t, first, second)
}
