package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/core/ports/driven"
	"github.com/recall-labs/recall/internal/core/ports/driving"
	"github.com/recall-labs/recall/internal/logger"
)

// Ensure SummaryService implements the interface.
var _ driving.SummaryService = (*SummaryService)(nil)

// SummaryService condenses text, files, directories and search results
// into short overviews.
type SummaryService struct {
	store driven.EmbeddingsStore
}

// NewSummaryService creates a summary service.
func NewSummaryService(store driven.EmbeddingsStore) *SummaryService {
	return &SummaryService{store: store}
}

// Text summarises raw text to at most maxWords words. Without a language
// model in the loop, the budget is enforced by word truncation.
func (s *SummaryService) Text(ctx context.Context, text string, maxWords int, focus string) (string, error) {
	if maxWords <= 0 {
		maxWords = 500
	}

	words := strings.Fields(text)
	if len(words) <= maxWords {
		return fmt.Sprintf("Text (already concise, %d words):\n%s", len(words), text), nil
	}

	header := fmt.Sprintf("Summary (%d of %d words)", maxWords, len(words))
	if focus != "" {
		header += fmt.Sprintf(", focus: %s", focus)
	}
	return fmt.Sprintf("%s:\n%s...", header, strings.Join(words[:maxWords], " ")), nil
}

// File summarises a file's contents with per-type analysis.
func (s *SummaryService) File(ctx context.Context, path string, maxWords int, includeMetadata bool) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("file not found: %s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is not a file: %s: %w", path, domain.ErrInvalidInput)
	}

	logger.Debug("Summarizing file %s (%d bytes)", path, info.Size())

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(raw) {
		ext := filepath.Ext(path)
		if ext == "" {
			ext = "unknown"
		}
		return fmt.Sprintf("Binary file: %s format (%s)", ext, humanSize(info.Size())), nil
	}

	content := string(raw)
	fileType := detectFileType(path)

	var parts []string
	if includeMetadata {
		parts = append(parts, fmt.Sprintf("File: %s (%s)", filepath.Base(path), humanSize(info.Size())))
		parts = append(parts, fmt.Sprintf("Type: %s", fileType))
	}

	switch fileType {
	case "code":
		parts = append(parts, "Analysis: "+analyzeCode(content))
	case "json":
		parts = append(parts, "Structure: "+analyzeJSON(content))
	case "markdown":
		parts = append(parts, "Content: "+analyzeMarkdown(content))
	case "config":
		parts = append(parts, "Configuration: "+analyzeConfig(content))
	}

	lines := strings.Split(content, "\n")
	keyLines := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			keyLines++
		}
	}

	if len(lines) <= 50 {
		parts = append(parts, fmt.Sprintf("Content (%d lines):", len(lines)))
		parts = append(parts, truncate(content, 500))
	} else {
		parts = append(parts, fmt.Sprintf("Statistics: %d total lines, %d content lines", len(lines), keyLines))
		parts = append(parts, "Preview (first 10 lines):")
		parts = append(parts, strings.Join(lines[:10], "\n"))
	}

	return strings.Join(parts, "\n"), nil
}

// Directory summarises a directory tree: size, file type breakdown,
// largest files and a depth-limited tree.
func (s *SummaryService) Directory(ctx context.Context, query driving.DirectoryQuery) (string, error) {
	info, err := os.Stat(query.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("directory not found: %s: %w", query.Path, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", query.Path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s: %w", query.Path, domain.ErrInvalidInput)
	}

	maxDepth := query.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 3
	}
	extFilter := make(map[string]bool, len(query.Extensions))
	for _, ext := range query.Extensions {
		extFilter[strings.TrimSpace(ext)] = true
	}

	stats := analyzeDirectory(query.Path, maxDepth, query.IncludeHidden, extFilter, 0)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Directory: %s\n", query.Path)
	fmt.Fprintf(&sb, "Total Size: %s\n", humanSize(stats.totalSize))
	fmt.Fprintf(&sb, "Files: %d, Directories: %d\n", stats.fileCount, stats.dirCount)

	if len(stats.fileTypes) > 0 {
		sb.WriteString("\nFile Types:\n")
		for _, tc := range topCounts(stats.fileTypes, 10) {
			name := tc.Topic
			if name == "" {
				name = "no extension"
			}
			fmt.Fprintf(&sb, "  %s: %d files\n", name, tc.Count)
		}
	}

	if len(stats.largest) > 0 {
		sb.WriteString("\nLargest Files:\n")
		top := stats.largest
		if len(top) > 5 {
			top = top[:5]
		}
		for _, file := range top {
			rel, relErr := filepath.Rel(query.Path, file.path)
			if relErr != nil {
				rel = file.path
			}
			fmt.Fprintf(&sb, "  %s (%s)\n", rel, humanSize(file.size))
		}
	}

	sb.WriteString("\nDirectory Structure:\n")
	sb.WriteString(buildTree(query.Path, maxDepth, query.IncludeHidden, extFilter, 0, ""))

	return sb.String(), nil
}

// SearchResults searches the store and summarises the combined hits.
func (s *SummaryService) SearchResults(ctx context.Context, query string, limit, maxWords int) (string, error) {
	if query == "" {
		return "", fmt.Errorf("search query is empty: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}
	if maxWords <= 0 {
		maxWords = 400
	}

	results, err := s.store.Search(ctx, query, domain.SearchOptions{Limit: limit})
	if err != nil {
		return "", fmt.Errorf("searching for summary: %w", err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("No search results found for query: %s", query), nil
	}

	texts := make([]string, 0, len(results))
	for _, result := range results {
		if result.Text != "" {
			texts = append(texts, result.Text)
		}
	}
	combined := strings.Join(texts, "\n\n")

	words := strings.Fields(combined)
	if len(words) <= maxWords {
		return fmt.Sprintf("Search Results Summary for %q (%d documents):\n\n%s", query, len(texts), combined), nil
	}

	return fmt.Sprintf("Search Results Summary for %q (%d documents, showing %d of %d words):\n\n%s...",
		query, len(texts), maxWords, len(words), strings.Join(words[:maxWords], " ")), nil
}

// humanSize converts bytes to a human-readable size.
func humanSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f PB", value)
}

// detectFileType classifies a file by extension.
func detectFileType(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".py", ".js", ".java", ".cpp", ".c", ".h", ".cs", ".rb", ".go", ".rs", ".ts", ".tsx", ".jsx":
		return "code"
	case ".json":
		return "json"
	case ".md", ".markdown":
		return "markdown"
	case ".yml", ".yaml", ".toml", ".ini", ".cfg", ".conf":
		return "config"
	case ".txt", ".log":
		return "text"
	case ".xml", ".html", ".htm":
		return "markup"
	default:
		return "unknown"
	}
}

// analyzeCode counts rough code structure markers.
func analyzeCode(content string) string {
	var functions, classes, imports int
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "def ") || strings.Contains(line, "function ") || strings.Contains(line, "func ") {
			functions++
		}
		if strings.Contains(line, "class ") {
			classes++
		}
		if strings.Contains(line, "import ") || strings.Contains(line, "require(") {
			imports++
		}
	}

	var parts []string
	if classes > 0 {
		parts = append(parts, fmt.Sprintf("%d classes", classes))
	}
	if functions > 0 {
		parts = append(parts, fmt.Sprintf("%d functions", functions))
	}
	if imports > 0 {
		parts = append(parts, fmt.Sprintf("%d imports", imports))
	}
	if len(parts) == 0 {
		return "code file"
	}
	return strings.Join(parts, ", ")
}

// analyzeJSON describes the top-level JSON structure.
func analyzeJSON(content string) string {
	var value any
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		return "Invalid JSON"
	}
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		if len(keys) > 5 {
			keys = keys[:5]
		}
		return fmt.Sprintf("Object with %d top-level keys: %s", len(v), strings.Join(keys, ", "))
	case []any:
		return fmt.Sprintf("Array with %d items", len(v))
	default:
		return fmt.Sprintf("JSON value: %T", value)
	}
}

// analyzeMarkdown counts headings, links and code blocks.
func analyzeMarkdown(content string) string {
	headings := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			headings++
		}
	}
	links := strings.Count(content, "[")
	codeBlocks := strings.Count(content, "```") / 2

	var parts []string
	if headings > 0 {
		parts = append(parts, fmt.Sprintf("%d headings", headings))
	}
	if links > 0 {
		parts = append(parts, fmt.Sprintf("%d links", links))
	}
	if codeBlocks > 0 {
		parts = append(parts, fmt.Sprintf("%d code blocks", codeBlocks))
	}
	if len(parts) == 0 {
		return "markdown document"
	}
	return strings.Join(parts, ", ")
}

// analyzeConfig counts sections and settings.
func analyzeConfig(content string) string {
	var sections, settings int
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			sections++
		}
		if strings.Contains(trimmed, "=") || strings.Contains(trimmed, ":") {
			settings++
		}
	}

	var parts []string
	if sections > 0 {
		parts = append(parts, fmt.Sprintf("%d sections", sections))
	}
	if settings > 0 {
		parts = append(parts, fmt.Sprintf("%d settings", settings))
	}
	if len(parts) == 0 {
		return "configuration file"
	}
	return strings.Join(parts, ", ")
}

type dirStats struct {
	totalSize int64
	fileCount int
	dirCount  int
	fileTypes map[string]int
	largest   []sizedFile
}

type sizedFile struct {
	path string
	size int64
}

// analyzeDirectory recursively gathers directory statistics down to
// maxDepth.
func analyzeDirectory(path string, maxDepth int, includeHidden bool, extFilter map[string]bool, depth int) dirStats {
	stats := dirStats{fileTypes: make(map[string]int)}

	entries, err := os.ReadDir(path)
	if err != nil {
		return stats
	}

	for _, entry := range entries {
		if !includeHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		full := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			if depth >= maxDepth {
				continue
			}
			stats.dirCount++
			sub := analyzeDirectory(full, maxDepth, includeHidden, extFilter, depth+1)
			stats.totalSize += sub.totalSize
			stats.fileCount += sub.fileCount
			stats.dirCount += sub.dirCount
			for ext, count := range sub.fileTypes {
				stats.fileTypes[ext] += count
			}
			stats.largest = append(stats.largest, sub.largest...)
			continue
		}

		ext := filepath.Ext(entry.Name())
		if len(extFilter) > 0 && !extFilter[ext] {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		stats.fileCount++
		stats.totalSize += info.Size()
		stats.fileTypes[ext]++
		stats.largest = append(stats.largest, sizedFile{path: full, size: info.Size()})
	}

	sort.Slice(stats.largest, func(i, j int) bool { return stats.largest[i].size > stats.largest[j].size })
	if len(stats.largest) > 10 {
		stats.largest = stats.largest[:10]
	}
	return stats
}

// buildTree renders a depth-limited tree of the directory.
func buildTree(path string, maxDepth int, includeHidden bool, extFilter map[string]bool, depth int, prefix string) string {
	if depth >= maxDepth {
		return ""
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return prefix + "[unreadable]"
	}

	var filtered []os.DirEntry
	for _, entry := range entries {
		if !includeHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !entry.IsDir() && len(extFilter) > 0 && !extFilter[filepath.Ext(entry.Name())] {
			continue
		}
		filtered = append(filtered, entry)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].IsDir() != filtered[j].IsDir() {
			return filtered[i].IsDir()
		}
		return filtered[i].Name() < filtered[j].Name()
	})

	var lines []string
	for i, entry := range filtered {
		last := i == len(filtered)-1
		connector := "├── "
		childPrefix := "│   "
		if last {
			connector = "└── "
			childPrefix = "    "
		}

		if entry.IsDir() {
			lines = append(lines, prefix+connector+entry.Name()+"/")
			subtree := buildTree(filepath.Join(path, entry.Name()), maxDepth, includeHidden, extFilter, depth+1, prefix+childPrefix)
			if subtree != "" {
				lines = append(lines, subtree)
			}
		} else {
			size := ""
			if info, infoErr := entry.Info(); infoErr == nil {
				size = fmt.Sprintf(" (%s)", humanSize(info.Size()))
			}
			lines = append(lines, prefix+connector+entry.Name()+size)
		}
	}

	return strings.Join(lines, "\n")
}
