package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrontmatter(t *testing.T) {
	t.Run("extracts key-value pairs", func(t *testing.T) {
		metadata, body := ParseFrontmatter("---\ntitle: X\nauthor: Y\n---\n\nBody text")

		assert.Equal(t, map[string]string{"title": "X", "author": "Y"}, metadata)
		assert.Equal(t, "Body text", body)
	})

	t.Run("no frontmatter", func(t *testing.T) {
		metadata, body := ParseFrontmatter("Just a document.\n")

		assert.Empty(t, metadata)
		assert.Equal(t, "Just a document.", body)
	})

	t.Run("unclosed block is not frontmatter", func(t *testing.T) {
		metadata, body := ParseFrontmatter("---\ntitle: X\n\nBody text")

		assert.Empty(t, metadata)
		assert.Contains(t, body, "title: X")
	})

	t.Run("splits on the first colon only", func(t *testing.T) {
		metadata, _ := ParseFrontmatter("---\nurl: https://example.com:8080/path\n---\nBody")

		assert.Equal(t, "https://example.com:8080/path", metadata["url"])
	})

	t.Run("lines without a colon are ignored", func(t *testing.T) {
		metadata, _ := ParseFrontmatter("---\ntitle: X\nnot a pair\n---\nBody")

		assert.Equal(t, map[string]string{"title": "X"}, metadata)
	})

	t.Run("duplicate keys keep the last occurrence", func(t *testing.T) {
		metadata, _ := ParseFrontmatter("---\ntag: first\ntag: second\n---\nBody")

		assert.Equal(t, "second", metadata["tag"])
	})

	t.Run("trims keys and values", func(t *testing.T) {
		metadata, _ := ParseFrontmatter("---\n  title :   spaced out  \n---\nBody")

		assert.Equal(t, "spaced out", metadata["title"])
	})
}
