package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedDims      = "embedding.dimensions"
	keyEmbedTimeout   = "embedding.timeout_seconds"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMRetries     = "llm.retries"
	keyFusion         = "retrieval.fusion"
	keyAlpha          = "retrieval.alpha"
	keySearchLimit    = "retrieval.search_limit"
	keyAnswerLimit    = "retrieval.answer_limit"
	keyChunkSize      = "chunking.size"
	keyChunkOverlap   = "chunking.overlap"
	keyAllowMock      = "ingest.allow_mock_content"
	keyAllowFallback  = "ingest.allow_fallback_embedding"
	keyFetchTimeout   = "ingest.fetch_timeout_seconds"
	defaultOllamaHost = "http://localhost:11434"
)

// settingKind is the value type stored under a key.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKinds = map[string]settingKind{
	keyEmbedProvider: kindString,
	keyEmbedModel:    kindString,
	keyEmbedBaseURL:  kindString,
	keyEmbedAPIKey:   kindString,
	keyEmbedDims:     kindInt,
	keyEmbedTimeout:  kindInt,
	keyLLMProvider:   kindString,
	keyLLMModel:      kindString,
	keyLLMBaseURL:    kindString,
	keyLLMAPIKey:     kindString,
	keyLLMRetries:    kindInt,
	keyFusion:        kindString,
	keyAlpha:         kindFloat,
	keySearchLimit:   kindInt,
	keyAnswerLimit:   kindInt,
	keyChunkSize:     kindInt,
	keyChunkOverlap:  kindInt,
	keyAllowMock:     kindBool,
	keyAllowFallback: kindBool,
	keyFetchTimeout:  kindInt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// The aiValidator is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:       s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:          s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:        s.configStore.GetString(keyEmbedBaseURL),
			APIKey:         s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:     s.getPositiveInt(keyEmbedDims, defaults.Embedding.Dimensions),
			TimeoutSeconds: s.getPositiveInt(keyEmbedTimeout, defaults.Embedding.TimeoutSeconds),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
			Retries:  s.getInt(keyLLMRetries, defaults.LLM.Retries),
		},
		Retrieval: domain.RetrievalSettings{
			Fusion:      s.getFusion(defaults.Retrieval.Fusion),
			Alpha:       s.getAlpha(defaults.Retrieval.Alpha),
			SearchLimit: s.getPositiveInt(keySearchLimit, defaults.Retrieval.SearchLimit),
			AnswerLimit: s.getPositiveInt(keyAnswerLimit, defaults.Retrieval.AnswerLimit),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getPositiveInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Ingest: domain.IngestSettings{
			AllowMockContent:       s.getBool(keyAllowMock, defaults.Ingest.AllowMockContent),
			AllowFallbackEmbedding: s.getBool(keyAllowFallback, defaults.Ingest.AllowFallbackEmbedding),
			FetchTimeoutSeconds:    s.getPositiveInt(keyFetchTimeout, defaults.Ingest.FetchTimeoutSeconds),
		},
	}

	return settings, nil
}

// Save persists application settings.
// Empty API keys are not written so a stored key is never erased by accident.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyEmbedDims, settings.Embedding.Dimensions, false},
		{keyEmbedTimeout, settings.Embedding.TimeoutSeconds, false},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMRetries, settings.LLM.Retries, false},
		{keyFusion, settings.Retrieval.Fusion.String(), false},
		{keyAlpha, settings.Retrieval.Alpha, false},
		{keySearchLimit, settings.Retrieval.SearchLimit, false},
		{keyAnswerLimit, settings.Retrieval.AnswerLimit, false},
		{keyChunkSize, settings.Chunking.Size, false},
		{keyChunkOverlap, settings.Chunking.Overlap, false},
		{keyAllowMock, settings.Ingest.AllowMockContent, false},
		{keyAllowFallback, settings.Ingest.AllowFallbackEmbedding, false},
		{keyFetchTimeout, settings.Ingest.FetchTimeoutSeconds, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the type of key, validates it and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, key, value)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number: %q", domain.ErrInvalidInput, key, value)
		}
		if key == keyAlpha && (f < 0 || f > 1) {
			return fmt.Errorf("%w: %s must be between 0 and 1", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false: %q", domain.ErrInvalidInput, key, value)
		}
		parsed = b
	default:
		if err := validateString(key, value); err != nil {
			return err
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func validateString(key, value string) error {
	switch key {
	case keyFusion:
		if !domain.FusionPolicy(value).IsValid() {
			return fmt.Errorf("%w: unknown fusion policy %q (use %s or %s)",
				domain.ErrInvalidInput, value, domain.FusionLexicalFirst, domain.FusionWeighted)
		}
	case keyEmbedProvider, keyLLMProvider:
		if value != "" && !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
	}
	return nil
}

// Keys returns every supported setting key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaHost
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	// Every stored vector must share the model's dimension.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider == domain.AIProviderOllama {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaHost
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate pings the configured providers. Unconfigured providers pass.
func (s *SettingsService) Validate() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := s.aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}
	if err := s.aiValidator.ValidateLLM(&settings.LLM); err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	if val := s.configStore.GetInt(key); val >= 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getPositiveInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getAlpha(defaultVal float64) float64 {
	if _, exists := s.configStore.Get(keyAlpha); !exists {
		return defaultVal
	}
	val := s.configStore.GetFloat(keyAlpha)
	if val < 0 || val > 1 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFusion(defaultVal domain.FusionPolicy) domain.FusionPolicy {
	fusion := domain.FusionPolicy(s.configStore.GetString(keyFusion))
	if !fusion.IsValid() {
		return defaultVal
	}
	return fusion
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
