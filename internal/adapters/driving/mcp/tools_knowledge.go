package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-labs/recall/internal/core/ports/driving"
)

// UpdateDocumentInput is the input schema for the update_document tool.
type UpdateDocumentInput struct {
	DocumentID string         `json:"document_id" jsonschema:"id of the document to insert or replace"`
	Text       string         `json:"text" jsonschema:"document text"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"arbitrary metadata to attach"`
}

// UpdateDocumentOutput is the output schema for the update_document tool.
type UpdateDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Updated    bool   `json:"updated"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the document to delete"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Deleted    bool   `json:"deleted"`
}

// SaveMarkdownInput is the input schema for the save_to_markdown tool.
type SaveMarkdownInput struct {
	Filename    string            `json:"filename" jsonschema:"target filename (.md appended when missing)"`
	Content     string            `json:"content" jsonschema:"markdown content to write"`
	KBDirectory string            `json:"kb_directory" jsonschema:"knowledge base directory"`
	Frontmatter map[string]string `json:"frontmatter,omitempty" jsonschema:"YAML frontmatter key/value pairs"`
}

// SaveMarkdownOutput is the output schema for the save_to_markdown tool.
type SaveMarkdownOutput struct {
	Path string `json:"path"`
}

// UpdateMarkdownFileInput is the input schema for the update_markdown_file tool.
type UpdateMarkdownFileInput struct {
	Filename    string `json:"filename" jsonschema:"existing markdown file to modify"`
	Content     string `json:"content" jsonschema:"content to write"`
	KBDirectory string `json:"kb_directory" jsonschema:"knowledge base directory"`
	Mode        string `json:"mode" jsonschema:"'replace' or 'append'"`
}

// UpdateMarkdownFileOutput is the output schema for the update_markdown_file tool.
type UpdateMarkdownFileOutput struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
}

// OrganizeInput is the input schema for the organize_knowledge tool.
type OrganizeInput struct {
	Query    string `json:"query" jsonschema:"query selecting documents to organize"`
	Category string `json:"category" jsonschema:"category to assign"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum documents to categorize (default 10)"`
}

// OrganizeOutput is the output schema for the organize_knowledge tool.
type OrganizeOutput struct {
	Category  string              `json:"category"`
	Count     int                 `json:"count"`
	Documents []CategorizedOutput `json:"documents"`
}

// CategorizedOutput is one document placed in a category.
type CategorizedOutput struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Category   string  `json:"category"`
}

// ConsolidateInput is the input schema for the consolidate_knowledge tool.
type ConsolidateInput struct {
	Topic               string  `json:"topic" jsonschema:"topic to consolidate around"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" jsonschema:"similarity threshold 0-1 (default 0.8)"`
	Limit               int     `json:"limit,omitempty" jsonschema:"maximum documents to analyse (default 20)"`
}

// ConsolidateOutput is the output schema for the consolidate_knowledge tool.
type ConsolidateOutput struct {
	Topic         string     `json:"topic"`
	Groups        [][]string `json:"groups"`
	TotalAnalyzed int        `json:"total_analyzed"`
}

// ReloadKBInput is the input schema for the reload_markdown_kb tool.
type ReloadKBInput struct {
	KBDirectory      string `json:"kb_directory" jsonschema:"directory of markdown files to ingest"`
	Recursive        *bool  `json:"recursive,omitempty" jsonschema:"descend into subdirectories (default true)"`
	ByHeadings       *bool  `json:"by_headings,omitempty" jsonschema:"segment documents at headings (default true)"`
	MinSegmentLength int    `json:"min_segment_length,omitempty" jsonschema:"minimum characters per segment"`
}

// ReloadKBOutput is the output schema for the reload_markdown_kb tool.
type ReloadKBOutput struct {
	DocumentsLoaded int      `json:"documents_loaded"`
	SkippedFiles    []string `json:"skipped_files,omitempty"`
}

// ListFilesInput is the input schema for the list_markdown_files tool.
type ListFilesInput struct {
	Directory    string `json:"directory" jsonschema:"directory to enumerate"`
	IncludeStats bool   `json:"include_stats,omitempty" jsonschema:"include size, mtime and first heading"`
}

// ListFilesOutput is the output schema for the list_markdown_files tool.
type ListFilesOutput struct {
	Count int              `json:"count"`
	Files []MarkdownOutput `json:"files"`
}

// MarkdownOutput describes one markdown file.
type MarkdownOutput struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	FullPath  string `json:"full_path"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Modified  string `json:"modified,omitempty"`
	Title     string `json:"title,omitempty"`
}

// SemanticSearchInput is the input schema for the semantic_search tool.
type SemanticSearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum results to return (default 10)"`
}

// SemanticSearchOutput is the output schema for the semantic_search tool.
type SemanticSearchOutput struct {
	Count   int               `json:"count"`
	Results []SearchHitOutput `json:"results"`
}

// SearchHitOutput is a scored search result.
type SearchHitOutput struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// registerKnowledgeTools registers the knowledge base tool handlers.
func (s *Server) registerKnowledgeTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_document",
		Description: "Insert or replace a document in the knowledge index",
	}, s.handleUpdateDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document from the knowledge index",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_to_markdown",
		Description: "Write content to a markdown file in the knowledge base",
	}, s.handleSaveMarkdown)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_markdown_file",
		Description: "Replace or append to an existing markdown file",
	}, s.handleUpdateMarkdownFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "organize_knowledge",
		Description: "Assign a category to documents matching a query",
	}, s.handleOrganize)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "consolidate_knowledge",
		Description: "Find groups of near-duplicate documents around a topic",
	}, s.handleConsolidate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reload_markdown_kb",
		Description: "Re-ingest a markdown directory into the knowledge index",
	}, s.handleReloadKB)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_markdown_files",
		Description: "List markdown files in the knowledge base directory",
	}, s.handleListFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Search the knowledge base semantically",
	}, s.handleSemanticSearch)
}

func (s *Server) handleUpdateDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateDocumentInput,
) (*mcp.CallToolResult, UpdateDocumentOutput, error) {
	if err := s.ports.Knowledge.UpdateDocument(ctx, input.DocumentID, input.Text, input.Metadata); err != nil {
		return nil, UpdateDocumentOutput{}, err
	}
	return nil, UpdateDocumentOutput{DocumentID: input.DocumentID, Updated: true}, nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if err := s.ports.Knowledge.DeleteDocument(ctx, input.DocumentID); err != nil {
		return nil, DeleteDocumentOutput{}, err
	}
	return nil, DeleteDocumentOutput{DocumentID: input.DocumentID, Deleted: true}, nil
}

func (s *Server) handleSaveMarkdown(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SaveMarkdownInput,
) (*mcp.CallToolResult, SaveMarkdownOutput, error) {
	path, err := s.ports.Knowledge.SaveMarkdown(ctx, driving.SaveMarkdownInput{
		Filename:    input.Filename,
		Content:     input.Content,
		KBDirectory: input.KBDirectory,
		Frontmatter: input.Frontmatter,
	})
	if err != nil {
		return nil, SaveMarkdownOutput{}, err
	}
	return nil, SaveMarkdownOutput{Path: path}, nil
}

func (s *Server) handleUpdateMarkdownFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateMarkdownFileInput,
) (*mcp.CallToolResult, UpdateMarkdownFileOutput, error) {
	path, err := s.ports.Knowledge.UpdateMarkdownFile(ctx, driving.UpdateMarkdownInput{
		Filename:    input.Filename,
		Content:     input.Content,
		KBDirectory: input.KBDirectory,
		Mode:        input.Mode,
	})
	if err != nil {
		return nil, UpdateMarkdownFileOutput{}, err
	}
	return nil, UpdateMarkdownFileOutput{Path: path, Mode: input.Mode}, nil
}

func (s *Server) handleOrganize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OrganizeInput,
) (*mcp.CallToolResult, OrganizeOutput, error) {
	org, err := s.ports.Knowledge.Organize(ctx, input.Query, input.Category, input.Limit)
	if err != nil {
		return nil, OrganizeOutput{}, err
	}

	output := OrganizeOutput{
		Category:  org.Category,
		Count:     len(org.Documents),
		Documents: make([]CategorizedOutput, len(org.Documents)),
	}
	for i, doc := range org.Documents {
		output.Documents[i] = CategorizedOutput{
			DocumentID: doc.ID,
			Score:      doc.Score,
			Category:   doc.Category,
		}
	}
	return nil, output, nil
}

func (s *Server) handleConsolidate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConsolidateInput,
) (*mcp.CallToolResult, ConsolidateOutput, error) {
	consolidation, err := s.ports.Knowledge.Consolidate(ctx, input.Topic, input.SimilarityThreshold, input.Limit)
	if err != nil {
		return nil, ConsolidateOutput{}, err
	}

	return nil, ConsolidateOutput{
		Topic:         consolidation.Topic,
		Groups:        consolidation.Groups,
		TotalAnalyzed: consolidation.TotalAnalyzed,
	}, nil
}

func (s *Server) handleReloadKB(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReloadKBInput,
) (*mcp.CallToolResult, ReloadKBOutput, error) {
	recursive := true
	if input.Recursive != nil {
		recursive = *input.Recursive
	}
	byHeadings := true
	if input.ByHeadings != nil {
		byHeadings = *input.ByHeadings
	}

	result, err := s.ports.Knowledge.Reload(ctx, driving.ReloadInput{
		KBDirectory:      input.KBDirectory,
		Recursive:        recursive,
		ByHeadings:       byHeadings,
		MinSegmentLength: input.MinSegmentLength,
	})
	if err != nil {
		return nil, ReloadKBOutput{}, err
	}

	return nil, ReloadKBOutput{
		DocumentsLoaded: result.DocumentsLoaded,
		SkippedFiles:    result.SkippedFiles,
	}, nil
}

func (s *Server) handleListFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListFilesInput,
) (*mcp.CallToolResult, ListFilesOutput, error) {
	files, err := s.ports.Knowledge.ListFiles(ctx, input.Directory, input.IncludeStats)
	if err != nil {
		return nil, ListFilesOutput{}, err
	}

	output := ListFilesOutput{
		Count: len(files),
		Files: make([]MarkdownOutput, len(files)),
	}
	for i, f := range files {
		output.Files[i] = MarkdownOutput{
			Name:      f.Name,
			Path:      f.Path,
			FullPath:  f.FullPath,
			SizeBytes: f.SizeBytes,
			Modified:  f.Modified,
			Title:     f.Title,
		}
	}
	return nil, output, nil
}

func (s *Server) handleSemanticSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SemanticSearchInput,
) (*mcp.CallToolResult, SemanticSearchOutput, error) {
	results, err := s.ports.Knowledge.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SemanticSearchOutput{}, err
	}

	output := SemanticSearchOutput{
		Count:   len(results),
		Results: make([]SearchHitOutput, len(results)),
	}
	for i, result := range results {
		output.Results[i] = SearchHitOutput{
			DocumentID: result.ID,
			Text:       result.Text,
			Score:      result.Score,
		}
	}
	return nil, output, nil
}
