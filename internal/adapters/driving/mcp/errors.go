// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Recall. It exposes memory, conversation, learning, knowledge base and
// summarization tools to AI assistants.
package mcp

import "errors"

// Errors returned when a required service is not provided.
var (
	ErrMissingMemoryService       = errors.New("mcp: memory service is required")
	ErrMissingConversationService = errors.New("mcp: conversation service is required")
	ErrMissingLearningService     = errors.New("mcp: learning service is required")
	ErrMissingKnowledgeService    = errors.New("mcp: knowledge service is required")
	ErrMissingSummaryService      = errors.New("mcp: summary service is required")
)
