package markdown

import "strings"

// frontmatterDelimiter separates the metadata block from the body.
const frontmatterDelimiter = "---"

// ParseFrontmatter splits raw content into a flat key-value metadata map
// and the remaining body text.
//
// A frontmatter block exists when the content starts with "---" and a second
// "---" follows. The block is scanned line by line: lines are split on the
// FIRST colon into trimmed key and value, lines without a colon are ignored,
// and duplicate keys keep the last occurrence. Values are always strings.
//
// This is deliberately not a YAML parser. Multi-line values, nesting and
// list syntax are out of scope; such lines either become single string
// values or are dropped. Malformed frontmatter (fewer than two delimiters)
// is treated as "no frontmatter" and never fails.
func ParseFrontmatter(content string) (map[string]string, string) {
	metadata := make(map[string]string)

	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return metadata, strings.TrimSpace(content)
	}

	parts := strings.SplitN(content, frontmatterDelimiter, 3)
	if len(parts) < 3 {
		return metadata, strings.TrimSpace(content)
	}

	for _, line := range strings.Split(parts[1], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		metadata[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return metadata, strings.TrimSpace(parts[2])
}
