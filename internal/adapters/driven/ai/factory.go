// Package ai builds the AI and extraction adapters from application settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pagewise/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/embedding/fallback"
	ollamaembed "github.com/custodia-labs/pagewise/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/pagewise/internal/adapters/driven/embedding/openai"
	extractfallback "github.com/custodia-labs/pagewise/internal/adapters/driven/extractor/fallback"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/extractor/mock"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/extractor/web"
	anthropicllm "github.com/custodia-labs/pagewise/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/pagewise/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pagewise/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// settingsHint is appended to provider errors.
const settingsHint = "Run 'pagewise settings show' to review the configuration"

// InitResult holds the driven adapters the services are wired with.
type InitResult struct {
	// Embedding is always set. Without a provider it produces offline vectors.
	Embedding *fallback.EmbeddingService

	// LLM is nil when no provider is configured; answers then use templates.
	LLM driven.LLMService

	// Prompts holds the user-editable answer prompts.
	Prompts driven.PromptStore

	// Extractor fetches pages, degrading to placeholder content when allowed.
	Extractor driven.ContentExtractor

	// Warnings lists non-fatal problems that caused a degraded setup.
	Warnings []string
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Embedding != nil {
		_ = r.Embedding.Close()
	}
	if r.LLM != nil {
		_ = r.LLM.Close()
	}
}

// Initialise creates every AI-facing adapter from settings. Provider
// construction failures degrade to the offline path when the settings
// allow it and are reported in Warnings.
func Initialise(settings *domain.AppSettings, promptDir string) (*InitResult, error) {
	if settings == nil {
		defaults := domain.DefaultAppSettings()
		settings = &defaults
	}
	result := &InitResult{}

	primary, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		if !settings.Ingest.AllowFallbackEmbedding {
			return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding provider disabled: %v", err))
		primary = nil
	}
	result.Embedding = fallback.NewEmbeddingService(fallback.Config{
		Primary:       primary,
		Timeout:       time.Duration(settings.Embedding.TimeoutSeconds) * time.Second,
		AllowFallback: settings.Ingest.AllowFallbackEmbedding,
		Dimensions:    settings.Embedding.Dimensions,
	})

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm provider disabled: %v", err))
		llm = nil
	}
	result.LLM = llm

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("create prompt store: %w", err)
	}
	result.Prompts = prompts

	result.Extractor = CreateExtractor(&settings.Ingest)

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	mode := "offline"
	if result.Embedding.UsingProvider() {
		mode = "provider"
	}
	logger.Info("AI adapters: embedding=%s (%s) llm=%v extractor=%s",
		result.Embedding.ModelName(), mode, result.LLM != nil, result.Extractor.Name())
	return result, nil
}

// CreateExtractor builds the page extractor. With AllowMockContent set,
// pages that cannot be fetched are replaced by placeholder content.
func CreateExtractor(settings *domain.IngestSettings) driven.ContentExtractor {
	timeout := time.Duration(settings.FetchTimeoutSeconds) * time.Second
	primary := web.New(web.Config{Timeout: timeout})
	if !settings.AllowMockContent {
		return primary
	}
	return extractfallback.New(primary, mock.New())
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
	}
	return nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, settingsHint)
	}
	return nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: embeddingDimensions(settings, ollamaembed.DefaultDimensions),
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: embeddingDimensions(settings, 0),
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// embeddingDimensions prefers the known size of the model, then the
// configured size, then fallback.
func embeddingDimensions(settings *domain.EmbeddingSettings, fallbackDims int) int {
	model := settings.Model
	if model == "" {
		model = domain.DefaultEmbeddingModels()[settings.Provider]
	}
	if dims := domain.EmbeddingDimensions()[model]; dims > 0 {
		return dims
	}
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	return fallbackDims
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
