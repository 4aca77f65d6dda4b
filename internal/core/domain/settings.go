package domain

const unknownDescription = "Unknown"

// FusionPolicy defines how lexical and vector signals are combined.
type FusionPolicy string

// Available fusion policies.
const (
	// FusionLexicalFirst uses lexical results when any exist and falls back
	// to vector similarity only when lexical search finds nothing.
	FusionLexicalFirst FusionPolicy = "lexical_first"

	// FusionWeighted blends normalised lexical score and cosine similarity.
	FusionWeighted FusionPolicy = "weighted"
)

// IsValid returns true if the fusion policy is recognised.
func (f FusionPolicy) IsValid() bool {
	switch f {
	case FusionLexicalFirst, FusionWeighted:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f FusionPolicy) String() string {
	return string(f)
}

// Description returns a human-readable description of the policy.
func (f FusionPolicy) Description() string {
	switch f {
	case FusionLexicalFirst:
		return "Lexical first (vector only when no keyword match)"
	case FusionWeighted:
		return "Weighted (lexical and vector blended)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables the provider; offline fallbacks are used.
	AIProviderNone AIProvider = ""

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "None (offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider. Empty means offline.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size shared by every stored chunk.
	Dimensions int

	// TimeoutSeconds bounds each provider call before falling back.
	TimeoutSeconds int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider. Empty means template answers only.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Retries is the number of extra attempts before falling back to templates.
	Retries int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds search and fusion configuration.
type RetrievalSettings struct {
	Fusion      FusionPolicy
	Alpha       float64
	SearchLimit int
	AnswerLimit int
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// IngestSettings holds ingestion degradation policy.
type IngestSettings struct {
	// AllowMockContent substitutes placeholder content when a page cannot be fetched.
	AllowMockContent bool

	// AllowFallbackEmbedding substitutes the offline embedder when the provider fails.
	AllowFallbackEmbedding bool

	// FetchTimeoutSeconds bounds page retrieval.
	FetchTimeoutSeconds int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Chunking  ChunkingSettings
	Ingest    IngestSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured so the tool runs fully offline.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Dimensions:     DefaultVectorDimension,
			TimeoutSeconds: 10,
		},
		LLM: LLMSettings{
			Retries: 1,
		},
		Retrieval: RetrievalSettings{
			Fusion:      FusionLexicalFirst,
			Alpha:       0.7,
			SearchLimit: DefaultSearchLimit,
			AnswerLimit: DefaultAnswerLimit,
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Ingest: IngestSettings{
			AllowMockContent:       true,
			AllowFallbackEmbedding: true,
			FetchTimeoutSeconds:    30,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
