package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleStatsResource(t *testing.T) {
	ctx := context.Background()
	server, _ := newTestServer(t)

	_, _, err := server.handleStoreMemory(ctx, nil, StoreMemoryInput{
		Content: "x", Topics: []string{"go"}, Sentiment: "positive",
	})
	require.NoError(t, err)

	result, err := server.handleStatsResource(ctx, readResourceRequest(uriScheme+"stats"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var stats struct {
		TotalMemories int      `json:"total_memories"`
		TopTopics     []string `json:"top_topics"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &stats))
	assert.Equal(t, 1, stats.TotalMemories)
	assert.Equal(t, []string{"go"}, stats.TopTopics)
}

func TestServer_handleKBFilesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured directory returns empty list", func(t *testing.T) {
		server, _ := newTestServer(t)

		result, err := server.handleKBFilesResource(ctx, readResourceRequest(uriScheme+"kb/files"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists markdown files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.md"), []byte("# Intro\n\nBody"), 0o644))

		ports, _ := newTestPorts(t)
		ports.KBDirectory = dir
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleKBFilesResource(ctx, readResourceRequest(uriScheme+"kb/files"))
		require.NoError(t, err)

		var files []struct {
			Name  string `json:"name"`
			Title string `json:"title"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &files))
		require.Len(t, files, 1)
		assert.Equal(t, "intro.md", files[0].Name)
		assert.Equal(t, "Intro", files[0].Title)
	})
}
