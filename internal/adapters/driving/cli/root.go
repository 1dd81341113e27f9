// Package cli provides the command-line interface for Recall.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recall-labs/recall/internal/adapters/driven/config/file"
	"github.com/recall-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/recall-labs/recall/internal/adapters/driven/storage/sqlite"
	"github.com/recall-labs/recall/internal/core/ports/driven"
	"github.com/recall-labs/recall/internal/core/ports/driving"
	"github.com/recall-labs/recall/internal/core/services"
	"github.com/recall-labs/recall/internal/logger"
)

// version is set via Execute at build time. Defaults to "dev".
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
	backend   string
	indexPath string
)

// Wired services. Populated by initServices; tests may inject their own.
var (
	configStore         driven.ConfigStore
	embeddingsStore     driven.EmbeddingsStore
	memoryService       driving.MemoryService
	conversationService driving.ConversationService
	learningService     driving.LearningService
	knowledgeService    driving.KnowledgeService
	summaryService      driving.SummaryService
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Personal memory and knowledge base MCP server",
	Long: `Recall is a personal memory system exposed over the Model Context
Protocol. It stores memories, conversations and learnings in a local
index, ingests markdown knowledge bases, and serves them to AI
assistants as MCP tools.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.recall)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: sqlite or memory (default sqlite)")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "index path (database file or JSON snapshot)")
}

// Execute runs the root command with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// initServices wires the driven adapters and core services. A test that
// pre-populates the service vars keeps its wiring.
func initServices() error {
	if memoryService != nil {
		return nil
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = store

	if indexPath == "" {
		indexPath = configStore.GetString(driven.ConfigKeyIndexPath)
	}
	if backend == "" {
		backend = configStore.GetString(driven.ConfigKeyBackend)
	}

	switch backend {
	case "memory":
		memStore := memory.NewEmbeddingsStore()
		if indexPath != "" {
			if err := memStore.Load(indexPath); err != nil {
				return fmt.Errorf("loading index snapshot %s: %w", indexPath, err)
			}
		}
		embeddingsStore = memStore
	case "", "sqlite":
		sqlStore, err := sqlite.NewStore(indexPath)
		if err != nil {
			return fmt.Errorf("opening sqlite index: %w", err)
		}
		embeddingsStore = sqlStore
		// SQLite persists continuously; services checkpoint to its own path.
		indexPath = ""
	default:
		return fmt.Errorf("unknown storage backend %q, use sqlite or memory", backend)
	}

	logger.Info("Storage backend ready (backend=%s)", backendName())

	memoryService = services.NewMemoryService(embeddingsStore, indexPath)
	conversationService = services.NewConversationService(embeddingsStore, indexPath)
	learningService = services.NewLearningService(embeddingsStore, indexPath)
	knowledgeService = services.NewKnowledgeService(embeddingsStore, nil, indexPath)
	summaryService = services.NewSummaryService(embeddingsStore)

	return nil
}

func backendName() string {
	if backend == "" {
		return "sqlite"
	}
	return backend
}

// kbDirectory returns the configured knowledge base directory, if any.
func kbDirectory() string {
	if configStore == nil {
		return ""
	}
	return configStore.GetString(driven.ConfigKeyKBDirectory)
}
