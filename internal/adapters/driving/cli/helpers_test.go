package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/custodia-labs/pagewise/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/extractor/mock"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/services"
	"github.com/custodia-labs/pagewise/internal/postprocessors/chunker"
)

const testDims = 16

// testEnv holds the stores behind the services wired for a test.
type testEnv struct {
	store  *memory.Store
	config *memory.ConfigStore
}

// setupTestServices wires every service over in-memory stores and
// restores the package state when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{store: memory.NewStore(), config: memory.NewConfigStore()}
	embedder := hash.NewEmbeddingService(testDims)
	retrieval := domain.DefaultAppSettings().Retrieval
	search := services.NewSearchService(env.store, embedder, retrieval)

	searchService = search
	ingestService = services.NewIngestService(mock.New(), chunker.New(), embedder, env.store)
	answerService = services.NewAnswerService(search, env.store, embedder, nil, nil, services.AnswerConfig{})
	contentService = services.NewContentService(env.store, env.store, env.store, embedder)
	settingsService = services.NewSettingsService(env.config, nil)

	t.Cleanup(resetServices)
	return env
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables, which cobra keeps between executions.
func resetFlags() {
	searchLimit = domain.DefaultSearchLimit
	searchJSON = false
	askJSON = false
	ingestTextFile = ""
	ingestTitle = ""
	ingestJSON = false
	contentJSONOutput = false
	contentShowChunks = false
	contentClearYes = false
	historyLimit = 20
	historyJSON = false
	statsJSON = false
	settingsModel = ""
}

// ingestText stores text directly, bypassing the CLI.
func (e *testEnv) ingestText(t *testing.T, url, title, text string) *domain.ContentItem {
	t.Helper()
	item, err := ingestService.IngestText(t.Context(), url, title, text)
	if err != nil {
		t.Fatalf("ingest %s: %v", url, err)
	}
	return item
}
