package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driven"
	"github.com/recall-labs/recall/internal/core/ports/driving"
	"github.com/recall-labs/recall/internal/loaders/markdown"
	"github.com/recall-labs/recall/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// KnowledgeService manages the indexed knowledge base and its markdown
// files on disk.
type KnowledgeService struct {
	store     driven.EmbeddingsStore
	loader    *markdown.Loader
	indexPath string
}

// NewKnowledgeService creates a knowledge service. A nil loader gets the
// default markdown loader.
func NewKnowledgeService(store driven.EmbeddingsStore, loader *markdown.Loader, indexPath string) *KnowledgeService {
	if loader == nil {
		loader = markdown.NewLoader(nil)
	}
	return &KnowledgeService{store: store, loader: loader, indexPath: indexPath}
}

// UpdateDocument inserts or replaces an indexed document.
func (s *KnowledgeService) UpdateDocument(ctx context.Context, id, text string, metadata map[string]any) error {
	if id == "" || text == "" {
		return fmt.Errorf("document id and text are required: %w", domain.ErrInvalidInput)
	}

	logger.Info("Updating document %s", id)

	record := domain.Record{ID: id, Text: text, Metadata: metadata}
	if err := s.store.Upsert(ctx, []domain.Record{record}); err != nil {
		return fmt.Errorf("updating document %s: %w", id, err)
	}
	return persist(ctx, s.store, s.indexPath)
}

// DeleteDocument removes a document from the index.
func (s *KnowledgeService) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("document id is required: %w", domain.ErrInvalidInput)
	}

	logger.Info("Deleting document %s", id)

	if err := s.store.Delete(ctx, []string{id}); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return persist(ctx, s.store, s.indexPath)
}

// SaveMarkdown writes content to a markdown file under the knowledge base
// directory, creating the directory if needed. Frontmatter keys are
// emitted sorted so output is reproducible.
func (s *KnowledgeService) SaveMarkdown(ctx context.Context, input driving.SaveMarkdownInput) (string, error) {
	if input.Filename == "" || input.KBDirectory == "" {
		return "", fmt.Errorf("filename and kb directory are required: %w", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(input.KBDirectory, 0o755); err != nil {
		return "", fmt.Errorf("creating kb directory: %w", err)
	}

	path := filepath.Join(input.KBDirectory, ensureMarkdownExt(input.Filename))

	var sb strings.Builder
	if len(input.Frontmatter) > 0 {
		keys := make([]string, 0, len(input.Frontmatter))
		for key := range input.Frontmatter {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		sb.WriteString("---\n")
		for _, key := range keys {
			fmt.Fprintf(&sb, "%s: %s\n", key, input.Frontmatter[key])
		}
		sb.WriteString("---\n\n")
	}
	sb.WriteString(input.Content)

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	logger.Info("Saved markdown file %s", path)
	return path, nil
}

// UpdateMarkdownFile replaces or appends to an existing markdown file.
func (s *KnowledgeService) UpdateMarkdownFile(ctx context.Context, input driving.UpdateMarkdownInput) (string, error) {
	if input.Filename == "" || input.KBDirectory == "" {
		return "", fmt.Errorf("filename and kb directory are required: %w", domain.ErrInvalidInput)
	}

	path := filepath.Join(input.KBDirectory, ensureMarkdownExt(input.Filename))
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("file not found: %s: %w", path, domain.ErrNotFound)
	} else if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	switch input.Mode {
	case "replace":
		if err := os.WriteFile(path, []byte(input.Content), 0o644); err != nil {
			return "", fmt.Errorf("replacing %s: %w", path, err)
		}
	case "append":
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", path, err)
		}
		_, werr := f.WriteString("\n\n" + input.Content)
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("appending to %s: %w", path, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("closing %s: %w", path, cerr)
		}
	default:
		return "", fmt.Errorf("invalid mode %q, use 'replace' or 'append': %w", input.Mode, domain.ErrInvalidInput)
	}

	logger.Info("Updated markdown file %s (mode=%s)", path, input.Mode)
	return path, nil
}

// Organize assigns a category to documents matching a query and persists
// the assignment on each document's metadata.
func (s *KnowledgeService) Organize(ctx context.Context, query, category string, limit int) (*driving.Organization, error) {
	if query == "" || category == "" {
		return nil, fmt.Errorf("query and category are required: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}

	results, err := s.store.Search(ctx, query, domain.SearchOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("searching documents to organize: %w", err)
	}

	org := &driving.Organization{Category: category}
	var updated []domain.Record
	for _, result := range results {
		metadata := domain.CloneMetadata(result.Metadata)
		metadata[domain.MetaCategory] = category
		updated = append(updated, domain.Record{ID: result.ID, Text: result.Text, Metadata: metadata})
		org.Documents = append(org.Documents, driving.CategorizedDocument{
			ID:       result.ID,
			Score:    result.Score,
			Category: category,
		})
	}

	if len(updated) > 0 {
		if err := s.store.Upsert(ctx, updated); err != nil {
			return nil, fmt.Errorf("assigning category %q: %w", category, err)
		}
		if err := persist(ctx, s.store, s.indexPath); err != nil {
			return nil, err
		}
	}

	logger.Info("Organized %d documents into %q", len(org.Documents), category)
	return org, nil
}

// Consolidate finds groups of near-duplicate documents around a topic.
// Documents whose relevance scores sit within 1-threshold of each other
// are grouped as consolidation candidates.
func (s *KnowledgeService) Consolidate(ctx context.Context, topic string, similarityThreshold float64, limit int) (*driving.Consolidation, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic is required: %w", domain.ErrInvalidInput)
	}
	if similarityThreshold <= 0 {
		similarityThreshold = 0.8
	}
	if limit <= 0 {
		limit = 20
	}

	results, err := s.store.Search(ctx, topic, domain.SearchOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("searching documents to consolidate: %w", err)
	}

	consolidation := &driving.Consolidation{Topic: topic, TotalAnalyzed: len(results)}
	seen := make(map[int]bool)
	margin := 1.0 - similarityThreshold

	for i, first := range results {
		if seen[i] {
			continue
		}
		group := []string{first.ID}
		for j := i + 1; j < len(results); j++ {
			if seen[j] {
				continue
			}
			diff := first.Score - results[j].Score
			if diff < 0 {
				diff = -diff
			}
			if diff < margin {
				group = append(group, results[j].ID)
				seen[j] = true
			}
		}
		if len(group) > 1 {
			consolidation.Groups = append(consolidation.Groups, group)
			seen[i] = true
		}
	}

	return consolidation, nil
}

// Reload re-ingests the markdown directory into the index.
func (s *KnowledgeService) Reload(ctx context.Context, input driving.ReloadInput) (*driving.ReloadResult, error) {
	if input.KBDirectory == "" {
		return nil, fmt.Errorf("kb directory is required: %w", domain.ErrInvalidInput)
	}
	minLen := input.MinSegmentLength
	if minLen <= 0 {
		minLen = markdown.DefaultMinSegmentLength
	}

	logger.Info("Reloading knowledge base from %s", input.KBDirectory)

	loaded, err := s.loader.LoadAndSegmentDirectory(input.KBDirectory, input.Recursive, input.ByHeadings, minLen)
	if err != nil {
		return nil, err
	}

	result := &driving.ReloadResult{DocumentsLoaded: len(loaded.Records)}
	for _, skipped := range loaded.Skipped {
		result.SkippedFiles = append(result.SkippedFiles, skipped.Path)
	}

	if len(loaded.Records) == 0 {
		logger.Warn("No markdown documents found in %s", input.KBDirectory)
		return result, nil
	}

	if err := s.store.Upsert(ctx, loaded.Records); err != nil {
		return nil, fmt.Errorf("indexing %d segments: %w", len(loaded.Records), err)
	}
	if err := persist(ctx, s.store, s.indexPath); err != nil {
		return nil, err
	}

	logger.Info("Reloaded %d document segments from %s", len(loaded.Records), input.KBDirectory)
	return result, nil
}

// ListFiles enumerates markdown files under dir, optionally with size,
// modification time and first-heading title.
func (s *KnowledgeService) ListFiles(ctx context.Context, dir string, includeStats bool) ([]driving.MarkdownFile, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("directory not found: %s: %w", dir, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s: %w", dir, domain.ErrInvalidInput)
	}

	var files []driving.MarkdownFile
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".md" && ext != ".markdown" {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		file := driving.MarkdownFile{Name: d.Name(), Path: rel, FullPath: path}

		if includeStats {
			if fi, statErr := d.Info(); statErr == nil {
				file.SizeBytes = fi.Size()
				file.Modified = fi.ModTime().Format(time.RFC3339)
			}
			file.Title = firstHeading(path)
		}

		files = append(files, file)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, walkErr)
	}

	return files, nil
}

// Search runs a semantic search over the knowledge base.
func (s *KnowledgeService) Search(ctx context.Context, query string, limit int) ([]domain.ScoredRecord, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is empty: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}

	results, err := s.store.Search(ctx, query, domain.SearchOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return results, nil
}

// ensureMarkdownExt appends .md when the filename has no markdown extension.
func ensureMarkdownExt(filename string) string {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown") {
		return filename
	}
	return filename + ".md"
}

// firstHeading returns the first markdown heading of the file, stripped of
// its # markers, or "" when the file does not start with one.
func firstHeading(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(raw), "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#") {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(line, "#"))
}
