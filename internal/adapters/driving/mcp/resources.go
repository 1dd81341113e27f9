package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Recall resources.
	uriScheme = "recall://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Aggregate statistics over stored memories.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Aggregate statistics over stored memories",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	// Markdown files currently in the knowledge base.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "kb/files",
		Name:        "kb-files",
		Description: "Markdown files in the configured knowledge base directory",
		MIMEType:    "application/json",
	}, s.handleKBFilesResource)
}

// handleStatsResource returns a reflection over all stored memories.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	reflection, err := s.ports.Memory.Reflect(ctx, "all", "", 0)
	if err != nil {
		return nil, fmt.Errorf("reflecting on memories: %w", err)
	}

	stats := struct {
		TotalMemories   int            `json:"total_memories"`
		AnalysisPeriod  string         `json:"analysis_period"`
		TopTopics       []string       `json:"top_topics,omitempty"`
		Sentiments      map[string]int `json:"sentiments,omitempty"`
		Recommendations []string       `json:"recommendations,omitempty"`
	}{
		TotalMemories:   reflection.TotalMemories,
		AnalysisPeriod:  reflection.AnalysisPeriod,
		Sentiments:      reflection.Sentiments,
		Recommendations: reflection.Recommendations,
	}
	for _, tc := range reflection.TopTopics {
		stats.TopTopics = append(stats.TopTopics, tc.Topic)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleKBFilesResource lists markdown files in the configured KB directory.
func (s *Server) handleKBFilesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.KBDirectory == "" {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	files, err := s.ports.Knowledge.ListFiles(ctx, s.ports.KBDirectory, true)
	if err != nil {
		return nil, fmt.Errorf("listing kb files: %w", err)
	}

	type fileInfo struct {
		Name     string `json:"name"`
		Path     string `json:"path"`
		Title    string `json:"title,omitempty"`
		Size     int64  `json:"size_bytes"`
		Modified string `json:"modified,omitempty"`
	}

	infos := make([]fileInfo, len(files))
	for i, f := range files {
		infos[i] = fileInfo{
			Name:     f.Name,
			Path:     f.Path,
			Title:    f.Title,
			Size:     f.SizeBytes,
			Modified: f.Modified,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling kb files: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
