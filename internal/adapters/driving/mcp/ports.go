package mcp

import (
	"github.com/recall-labs/recall/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Memory stores and recalls personal memories.
	Memory driving.MemoryService

	// Conversation records and recalls conversation turns.
	Conversation driving.ConversationService

	// Learning supports incremental knowledge acquisition.
	Learning driving.LearningService

	// Knowledge manages the markdown knowledge base and index.
	Knowledge driving.KnowledgeService

	// Summary condenses text, files and search results.
	Summary driving.SummaryService

	// KBDirectory is the markdown knowledge base directory exposed through
	// the kb/files resource. Optional.
	KBDirectory string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Memory == nil {
		return ErrMissingMemoryService
	}
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	if p.Learning == nil {
		return ErrMissingLearningService
	}
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	if p.Summary == nil {
		return ErrMissingSummaryService
	}
	return nil
}
