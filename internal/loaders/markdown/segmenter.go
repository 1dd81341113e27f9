package markdown

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinSegmentLength is the minimum segment size in characters.
const DefaultMinSegmentLength = 100

// Segment slices body text into an ordered list of segments.
//
// In heading mode a segment runs from one heading line (trimmed form starts
// with '#') to the next; text before the first heading forms an initial
// segment without one. In paragraph mode the text splits on blank-line
// boundaries instead. Either way, segments shorter than minSegmentLength
// after trimming are dropped.
//
// Segment never returns an empty slice: when no segment qualifies, the
// original text is returned as a single segment so that every source
// document contributes at least one record downstream.
func Segment(text string, byHeadings bool, minSegmentLength int) []string {
	var segments []string
	if byHeadings {
		segments = segmentByHeadings(text, minSegmentLength)
	} else {
		segments = segmentByParagraphs(text, minSegmentLength)
	}

	if len(segments) == 0 {
		return []string{text}
	}
	return segments
}

func segmentByParagraphs(text string, minLength int) []string {
	var segments []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || utf8.RuneCountInString(block) < minLength {
			continue
		}
		segments = append(segments, block)
	}
	return segments
}

func segmentByHeadings(text string, minLength int) []string {
	var segments []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		segment := strings.TrimSpace(strings.Join(current, "\n"))
		if utf8.RuneCountInString(segment) >= minLength {
			segments = append(segments, segment)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			flush()
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	flush()

	return segments
}
