package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driving"
)

func TestSummaryService_Text(t *testing.T) {
	ctx := context.Background()
	service := NewSummaryService(memory.NewEmbeddingsStore())

	t.Run("short text passes through", func(t *testing.T) {
		out, err := service.Text(ctx, "three short words", 0, "")
		require.NoError(t, err)
		assert.Equal(t, "Text (already concise, 3 words):\nthree short words", out)
	})

	t.Run("long text is truncated to the word budget", func(t *testing.T) {
		long := strings.Repeat("word ", 20)
		out, err := service.Text(ctx, long, 5, "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Summary (5 of 20 words):\n"))
		assert.True(t, strings.HasSuffix(out, "..."))
	})

	t.Run("focus appears in the header", func(t *testing.T) {
		long := strings.Repeat("word ", 20)
		out, err := service.Text(ctx, long, 5, "key points")
		require.NoError(t, err)
		assert.Contains(t, out, "focus: key points")
	})
}

func TestSummaryService_File(t *testing.T) {
	ctx := context.Background()
	service := NewSummaryService(memory.NewEmbeddingsStore())
	dir := t.TempDir()

	t.Run("markdown analysis", func(t *testing.T) {
		path := filepath.Join(dir, "doc.md")
		content := "# Title\n\n## Section\n\nSome [link](https://example.com) text."
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		out, err := service.File(ctx, path, 0, true)
		require.NoError(t, err)

		assert.Contains(t, out, "File: doc.md")
		assert.Contains(t, out, "Type: markdown")
		assert.Contains(t, out, "2 headings")
		assert.Contains(t, out, "1 links")
		assert.Contains(t, out, "Content (5 lines):")
	})

	t.Run("code analysis", func(t *testing.T) {
		path := filepath.Join(dir, "main.go")
		content := "import \"fmt\"\n\nfunc main() {}\n\nfunc helper() {}\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		out, err := service.File(ctx, path, 0, true)
		require.NoError(t, err)

		assert.Contains(t, out, "Type: code")
		assert.Contains(t, out, "2 functions")
		assert.Contains(t, out, "1 imports")
	})

	t.Run("json analysis", func(t *testing.T) {
		path := filepath.Join(dir, "data.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"b": 1, "a": 2}`), 0o644))

		out, err := service.File(ctx, path, 0, false)
		require.NoError(t, err)

		assert.Contains(t, out, "Object with 2 top-level keys: a, b")
	})

	t.Run("large file gets a preview", func(t *testing.T) {
		path := filepath.Join(dir, "big.txt")
		content := strings.Repeat("line\n", 100)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		out, err := service.File(ctx, path, 0, false)
		require.NoError(t, err)

		assert.Contains(t, out, "Statistics: 101 total lines, 100 content lines")
		assert.Contains(t, out, "Preview (first 10 lines):")
	})

	t.Run("binary file", func(t *testing.T) {
		path := filepath.Join(dir, "blob.bin")
		require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x01}, 0o644))

		out, err := service.File(ctx, path, 0, false)
		require.NoError(t, err)

		assert.Contains(t, out, "Binary file: .bin format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := service.File(ctx, filepath.Join(dir, "nope.md"), 0, false)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("directory is rejected", func(t *testing.T) {
		_, err := service.File(ctx, dir, 0, false)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSummaryService_Directory(t *testing.T) {
	ctx := context.Background()
	service := NewSummaryService(memory.NewEmbeddingsStore())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# Readme"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "guide.md"), []byte("# Guide body"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("secret"), 0o644))

	out, err := service.Directory(ctx, driving.DirectoryQuery{Path: dir})
	require.NoError(t, err)

	assert.Contains(t, out, "Files: 2, Directories: 1")
	assert.Contains(t, out, ".md: 2 files")
	assert.Contains(t, out, "docs/")
	assert.Contains(t, out, "guide.md")
	assert.NotContains(t, out, ".hidden", "hidden entries excluded by default")
}

func TestSummaryService_DirectoryExtensionFilter(t *testing.T) {
	ctx := context.Background()
	service := NewSummaryService(memory.NewEmbeddingsStore())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.md"), []byte("kept"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.txt"), []byte("dropped"), 0o644))

	out, err := service.Directory(ctx, driving.DirectoryQuery{
		Path:       dir,
		Extensions: []string{".md"},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Files: 1,")
	assert.Contains(t, out, "keep.md")
	assert.NotContains(t, out, "drop.txt")
}

func TestSummaryService_DirectoryErrors(t *testing.T) {
	ctx := context.Background()
	service := NewSummaryService(memory.NewEmbeddingsStore())

	_, err := service.Directory(ctx, driving.DirectoryQuery{Path: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = service.Directory(ctx, driving.DirectoryQuery{Path: file})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummaryService_SearchResults(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewSummaryService(store)

	require.NoError(t, store.Upsert(ctx, []domain.Record{
		{ID: "d1", Text: "redis caching strategies"},
		{ID: "d2", Text: "redis persistence options"},
	}))

	out, err := service.SearchResults(ctx, "redis", 0, 0)
	require.NoError(t, err)

	assert.Contains(t, out, `Search Results Summary for "redis" (2 documents)`)
	assert.Contains(t, out, "redis caching strategies")
	assert.Contains(t, out, "redis persistence options")
}

func TestSummaryService_SearchResultsTruncation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEmbeddingsStore()
	service := NewSummaryService(store)

	require.NoError(t, store.Upsert(ctx, []domain.Record{
		{ID: "d1", Text: "redis " + strings.Repeat("filler ", 50)},
	}))

	out, err := service.SearchResults(ctx, "redis", 10, 5)
	require.NoError(t, err)

	assert.Contains(t, out, "showing 5 of 51 words")
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestSummaryService_SearchResultsEmpty(t *testing.T) {
	service := NewSummaryService(memory.NewEmbeddingsStore())

	out, err := service.SearchResults(context.Background(), "nothing matches", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "No search results found for query: nothing matches", out)

	_, err = service.SearchResults(context.Background(), "", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
