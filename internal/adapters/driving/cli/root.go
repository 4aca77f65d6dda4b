// Package cli implements the pagewise command line interface.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagewise/internal/core/ports/driving"
	"github.com/custodia-labs/pagewise/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// skipBootstrap marks commands that run without opening the store.
const skipBootstrap = "skip-bootstrap"

var (
	verbose bool
	dataDir string
)

// Services used by the commands. Set by bootstrap, or directly by tests.
var (
	ingestService   driving.IngestService
	searchService   driving.SearchService
	answerService   driving.AnswerService
	contentService  driving.ContentService
	settingsService driving.SettingsService
)

// closers are released after the command finishes.
var closers []func()

var rootCmd = &cobra.Command{
	Use:   "pagewise",
	Short: "Save web pages and ask questions about them",
	Long: `pagewise ingests web pages into a local knowledge base and answers
questions about them with cited sources.

Pages are split into overlapping chunks, embedded, and stored in SQLite.
Questions are matched lexically and by vector similarity; answers are
written by the configured LLM, or assembled from the best chunks when
no LLM is set up.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output to stderr")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(),
		"directory for the database, config and prompts (env PAGEWISE_DATA_DIR)")
}

// Execute runs the root command and releases resources afterwards.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipBootstrap] == "true" || contentService != nil {
		return nil
	}

	return bootstrap(dataDir)
}

func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}

func defaultDataDir() string {
	if dir := os.Getenv("PAGEWISE_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pagewise"
	}
	return filepath.Join(home, ".pagewise")
}
