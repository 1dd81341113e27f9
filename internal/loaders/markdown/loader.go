package markdown

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/recall-labs/recall/internal/core/domain"
	"github.com/recall-labs/recall/internal/logger"
)

// Logger is the minimal logging capability the loader needs. The default
// implementation writes through the process verbose logger; tests inject
// their own.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type verboseLogger struct{}

func (verboseLogger) Debugf(format string, args ...any) { logger.Debug(format, args...) }
func (verboseLogger) Warnf(format string, args ...any)  { logger.Warn(format, args...) }

// SkippedFile records a file excluded from a load because of a read or
// decode failure. Skips are outcomes, not errors: the batch continues.
type SkippedFile struct {
	Path string
	Err  error
}

// LoadResult is the outcome of a directory load.
type LoadResult struct {
	Records []domain.Record
	Skipped []SkippedFile
}

// Loader converts markdown directory trees into store records.
type Loader struct {
	log Logger
}

// NewLoader creates a loader. A nil log falls back to the verbose logger.
func NewLoader(log Logger) *Loader {
	if log == nil {
		log = verboseLogger{}
	}
	return &Loader{log: log}
}

// LoadDirectory reads every markdown file under path into a whole-file
// record. The record id is the file's base name without extension; metadata
// always carries "source", "filename" and "directory", merged over any
// frontmatter keys.
//
// Returns domain.ErrNotFound when path does not exist and
// domain.ErrInvalidInput when it is not a directory. Individual unreadable
// files are reported in LoadResult.Skipped.
func (l *Loader) LoadDirectory(path string, recursive bool) (*LoadResult, error) {
	files, err := l.scan(path, recursive)
	if err != nil {
		return nil, err
	}

	l.log.Debugf("found %d markdown files in %s", len(files), path)

	result := &LoadResult{}
	for _, file := range files {
		record, err := l.loadFile(file)
		if err != nil {
			l.log.Warnf("skipping %s: %v", file, err)
			result.Skipped = append(result.Skipped, SkippedFile{Path: file, Err: err})
			continue
		}
		result.Records = append(result.Records, *record)
	}

	l.log.Debugf("loaded %d markdown documents from %s", len(result.Records), path)
	return result, nil
}

// LoadAndSegmentDirectory loads a directory and slices each document into
// segment records. Only segment records are returned; the whole-file records
// are an intermediate feeding the segmenter.
//
// Each segment record id is "{fileID}_seg{i}" and its metadata extends the
// file metadata with "segment_index" and "total_segments". Indices are
// contiguous from 0 after the minimum-length filter, and total_segments
// equals the number of segments actually kept.
func (l *Loader) LoadAndSegmentDirectory(path string, recursive, byHeadings bool, minSegmentLength int) (*LoadResult, error) {
	loaded, err := l.LoadDirectory(path, recursive)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{Skipped: loaded.Skipped}
	for _, doc := range loaded.Records {
		segments := Segment(doc.Text, byHeadings, minSegmentLength)
		for i, segment := range segments {
			metadata := domain.CloneMetadata(doc.Metadata)
			metadata[domain.MetaSegmentIndex] = i
			metadata[domain.MetaTotalSegments] = len(segments)
			result.Records = append(result.Records, domain.Record{
				ID:       fmt.Sprintf("%s_seg%d", doc.ID, i),
				Text:     segment,
				Metadata: metadata,
			})
		}
	}

	l.log.Debugf("segmented into %d records", len(result.Records))
	return result, nil
}

// scan enumerates markdown files under path, validating the path first.
func (l *Loader) scan(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("directory not found: %s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s: %w", path, domain.ErrInvalidInput)
	}

	if !recursive {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var files []string
		for _, entry := range entries {
			if !entry.IsDir() && isMarkdownFile(entry.Name()) {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
		return files, nil
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			l.log.Warnf("skipping %s: %v", p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isMarkdownFile(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", path, walkErr)
	}
	return files, nil
}

// loadFile reads one markdown file into a whole-file record.
func (l *Loader) loadFile(path string) (*domain.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%s is not valid UTF-8", path)
	}

	frontmatter, body := ParseFrontmatter(string(raw))

	metadata := make(map[string]any, len(frontmatter)+3)
	for key, value := range frontmatter {
		metadata[key] = value
	}
	metadata[domain.MetaSource] = path
	metadata[domain.MetaFilename] = filepath.Base(path)
	metadata[domain.MetaDirectory] = filepath.Dir(path)

	return &domain.Record{
		ID:       fileStem(path),
		Text:     body,
		Metadata: metadata,
	}, nil
}

// isMarkdownFile reports whether name carries a recognised markdown extension.
func isMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// fileStem returns the base name without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
