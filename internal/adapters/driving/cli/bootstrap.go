package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/pagewise/internal/adapters/driven/ai"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/services"
	"github.com/custodia-labs/pagewise/internal/logger"
	"github.com/custodia-labs/pagewise/internal/postprocessors/chunker"
)

// Environment variables that override stored API keys.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
)

// bootstrap opens the store under dir and wires every service.
func bootstrap(dir string) error {
	start := time.Now()
	defer logger.Elapsed("bootstrap", start)

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	applyEnvironment(settings)
	logger.Debug("config: %s", configStore.Path())

	adapters, err := ai.Initialise(settings, filepath.Join(dir, "prompts"))
	if err != nil {
		return err
	}
	closers = append(closers, adapters.Close)

	store, err := sqlite.NewStore(dir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	closers = append(closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store: %v", err)
		}
	})
	logger.Debug("database: %s", store.Path())

	chunks := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	search := services.NewSearchService(store.ContentStore(), adapters.Embedding, settings.Retrieval)

	settingsService = settingsSvc
	searchService = search
	ingestService = services.NewIngestService(adapters.Extractor, chunks, adapters.Embedding, store.ContentStore())
	answerService = services.NewAnswerService(
		search,
		store.HistoryStore(),
		adapters.Embedding,
		adapters.LLM,
		adapters.Prompts,
		services.AnswerConfig{Limit: settings.Retrieval.AnswerLimit, Retries: settings.LLM.Retries},
	)
	contentService = services.NewContentService(
		store.ContentStore(), store.HistoryStore(), store.Maintenance(), adapters.Embedding,
	)
	closers = append(closers, resetServices)
	return nil
}

// applyEnvironment fills API keys from the environment. Environment
// values take precedence over stored ones and are never persisted.
func applyEnvironment(settings *domain.AppSettings) {
	keys := map[domain.AIProvider]string{
		domain.AIProviderOpenAI:    os.Getenv(envOpenAIKey),
		domain.AIProviderAnthropic: os.Getenv(envAnthropicKey),
	}

	if key := keys[settings.Embedding.Provider]; key != "" {
		settings.Embedding.APIKey = key
	}
	if key := keys[settings.LLM.Provider]; key != "" {
		settings.LLM.APIKey = key
	}
}

func resetServices() {
	ingestService = nil
	searchService = nil
	answerService = nil
	contentService = nil
	settingsService = nil
}
