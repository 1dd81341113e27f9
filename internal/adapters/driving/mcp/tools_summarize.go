package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-labs/recall/internal/core/ports/driving"
)

// SummarizeTextInput is the input schema for the summarize_text tool.
type SummarizeTextInput struct {
	Text     string `json:"text" jsonschema:"the text to summarise"`
	MaxWords int    `json:"max_words,omitempty" jsonschema:"word budget for the summary (default 500)"`
	Focus    string `json:"focus,omitempty" jsonschema:"aspect to focus the summary on"`
}

// SummarizeFileInput is the input schema for the summarize_file tool.
type SummarizeFileInput struct {
	FilePath        string `json:"file_path" jsonschema:"path of the file to summarise"`
	MaxWords        int    `json:"max_words,omitempty" jsonschema:"word budget for the summary (default 300)"`
	IncludeMetadata *bool  `json:"include_metadata,omitempty" jsonschema:"include file name, size and type (default true)"`
}

// SummarizeDirectoryInput is the input schema for the summarize_directory tool.
type SummarizeDirectoryInput struct {
	DirectoryPath string   `json:"directory_path" jsonschema:"directory to summarise"`
	MaxDepth      int      `json:"max_depth,omitempty" jsonschema:"how deep to descend (default 3)"`
	IncludeHidden bool     `json:"include_hidden,omitempty" jsonschema:"include dotfiles and dot-directories"`
	FileTypes     []string `json:"file_types,omitempty" jsonschema:"only analyse these extensions (e.g. .go, .md)"`
}

// SummarizeSearchInput is the input schema for the summarize_search_results tool.
type SummarizeSearchInput struct {
	Query    string `json:"query" jsonschema:"search query whose results to summarise"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum results to combine (default 10)"`
	MaxWords int    `json:"max_words,omitempty" jsonschema:"word budget for the summary (default 400)"`
}

// SummaryOutput is the shared output schema for the summarize tools.
type SummaryOutput struct {
	Summary string `json:"summary"`
}

// registerSummaryTools registers the summarization tool handlers.
func (s *Server) registerSummaryTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_text",
		Description: "Summarise raw text within a word budget",
	}, s.handleSummarizeText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_file",
		Description: "Summarise a file with per-type analysis",
	}, s.handleSummarizeFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_directory",
		Description: "Summarise a directory tree: sizes, types and structure",
	}, s.handleSummarizeDirectory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_search_results",
		Description: "Search the index and summarise the combined results",
	}, s.handleSummarizeSearch)
}

func (s *Server) handleSummarizeText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeTextInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	summary, err := s.ports.Summary.Text(ctx, input.Text, input.MaxWords, input.Focus)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{Summary: summary}, nil
}

func (s *Server) handleSummarizeFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeFileInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	includeMetadata := true
	if input.IncludeMetadata != nil {
		includeMetadata = *input.IncludeMetadata
	}

	summary, err := s.ports.Summary.File(ctx, input.FilePath, input.MaxWords, includeMetadata)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{Summary: summary}, nil
}

func (s *Server) handleSummarizeDirectory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeDirectoryInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	summary, err := s.ports.Summary.Directory(ctx, driving.DirectoryQuery{
		Path:          input.DirectoryPath,
		MaxDepth:      input.MaxDepth,
		IncludeHidden: input.IncludeHidden,
		Extensions:    input.FileTypes,
	})
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{Summary: summary}, nil
}

func (s *Server) handleSummarizeSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeSearchInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	summary, err := s.ports.Summary.SearchResults(ctx, input.Query, input.Limit, input.MaxWords)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{Summary: summary}, nil
}
