package driving

import (
	"context"

	"github.com/recall-labs/recall/internal/core/domain"
)

// KnowledgeService manages the indexed knowledge base and its markdown
// files on disk.
type KnowledgeService interface {
	// UpdateDocument inserts or replaces an indexed document.
	UpdateDocument(ctx context.Context, id, text string, metadata map[string]any) error

	// DeleteDocument removes a document from the index.
	DeleteDocument(ctx context.Context, id string) error

	// SaveMarkdown writes content (with optional frontmatter) to a markdown
	// file under the knowledge base directory, creating it if needed.
	// Returns the written path.
	SaveMarkdown(ctx context.Context, input SaveMarkdownInput) (string, error)

	// UpdateMarkdownFile replaces or appends to an existing markdown file.
	// Returns the written path.
	UpdateMarkdownFile(ctx context.Context, input UpdateMarkdownInput) (string, error)

	// Organize assigns a category to documents matching a query and
	// persists the assignment.
	Organize(ctx context.Context, query, category string, limit int) (*Organization, error)

	// Consolidate finds groups of near-duplicate documents around a topic.
	Consolidate(ctx context.Context, topic string, similarityThreshold float64, limit int) (*Consolidation, error)

	// Reload re-ingests the markdown directory into the index.
	Reload(ctx context.Context, input ReloadInput) (*ReloadResult, error)

	// ListFiles enumerates markdown files under a directory.
	ListFiles(ctx context.Context, dir string, includeStats bool) ([]MarkdownFile, error)

	// Search runs a semantic search over the knowledge base.
	Search(ctx context.Context, query string, limit int) ([]domain.ScoredRecord, error)
}

// SaveMarkdownInput is content destined for a markdown file.
type SaveMarkdownInput struct {
	Filename    string
	Content     string
	KBDirectory string
	Frontmatter map[string]string
}

// UpdateMarkdownInput modifies an existing markdown file.
type UpdateMarkdownInput struct {
	Filename    string
	Content     string
	KBDirectory string

	// Mode is "replace" or "append".
	Mode string
}

// Organization reports documents assigned to a category.
type Organization struct {
	Category  string
	Documents []CategorizedDocument
}

// CategorizedDocument is one document placed in a category.
type CategorizedDocument struct {
	ID       string
	Score    float64
	Category string
}

// Consolidation reports groups of similar documents.
type Consolidation struct {
	Topic         string
	Groups        [][]string
	TotalAnalyzed int
}

// ReloadInput configures a knowledge base reload.
type ReloadInput struct {
	KBDirectory      string
	Recursive        bool
	ByHeadings       bool
	MinSegmentLength int
}

// ReloadResult reports a completed reload.
type ReloadResult struct {
	DocumentsLoaded int
	SkippedFiles    []string
}

// MarkdownFile describes one markdown file in the knowledge base.
type MarkdownFile struct {
	Name      string
	Path      string
	FullPath  string
	SizeBytes int64
	Modified  string
	Title     string
}
