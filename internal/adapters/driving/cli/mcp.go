package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recall-labs/recall/internal/adapters/driven/watch"
	"github.com/recall-labs/recall/internal/adapters/driving/mcp"
	"github.com/recall-labs/recall/internal/core/ports/driven"
	"github.com/recall-labs/recall/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

When kb.watch is enabled in the configuration, the server also watches
the knowledge base directory and re-indexes markdown files as they
change.

Examples:
  # Stdio mode (default, for Claude Desktop)
  recall mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  recall mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "recall": {
        "command": "/path/to/recall",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Memory:       memoryService,
		Conversation: conversationService,
		Learning:     learningService,
		Knowledge:    knowledgeService,
		Summary:      summaryService,
		KBDirectory:  kbDirectory(),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if err := startKBWatcher(cmd); err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// startKBWatcher launches the markdown watcher in the background when
// kb.watch is enabled and a KB directory is configured.
func startKBWatcher(cmd *cobra.Command) error {
	if configStore == nil || !configStore.GetBool(driven.ConfigKeyKBWatch) {
		return nil
	}

	dir := kbDirectory()
	if dir == "" {
		logger.Warn("kb.watch is enabled but kb.directory is not set, skipping watcher")
		return nil
	}

	watcher, err := watch.NewWatcher(knowledgeService, reloadInputFromConfig(dir), watch.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("starting knowledge base watcher: %w", err)
	}

	go func() {
		if err := watcher.Run(cmd.Context()); err != nil {
			logger.Warn("Knowledge base watcher stopped: %v", err)
		}
	}()

	return nil
}
