package driving

import "context"

// SummaryService condenses text, files, directories and search results
// into short overviews, keeping tool output within a word budget.
type SummaryService interface {
	// Text summarises raw text to at most maxWords words.
	Text(ctx context.Context, text string, maxWords int, focus string) (string, error)

	// File summarises a file's contents with per-type analysis.
	File(ctx context.Context, path string, maxWords int, includeMetadata bool) (string, error)

	// Directory summarises a directory tree.
	Directory(ctx context.Context, query DirectoryQuery) (string, error)

	// SearchResults searches the store and summarises the combined hits.
	SearchResults(ctx context.Context, query string, limit, maxWords int) (string, error)
}

// DirectoryQuery configures a directory summary.
type DirectoryQuery struct {
	Path          string
	MaxDepth      int
	IncludeHidden bool

	// Extensions restricts the analysis to files with these extensions
	// (e.g. ".go", ".md"). Empty means all files.
	Extensions []string
}
