package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagewise/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Every text gets the same vector.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	calls     int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
// Calls consume errs in order; once exhausted they return response.
type mockLLMService struct {
	response string
	errs     []error
	calls    int
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswer:       "Q: %s\nCONTEXT:\n%s\nSOURCES:\n%s",
		driven.PromptAnswerSystem: "Answer from context only.",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("no prompt " + name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockExtractor implements driven.ContentExtractor for testing.
type mockExtractor struct {
	extraction *driven.Extraction
	err        error
	urls       []string
}

func (m *mockExtractor) Extract(_ context.Context, url string) (*driven.Extraction, error) {
	m.urls = append(m.urls, url)
	if m.err != nil {
		return nil, m.err
	}
	return m.extraction, nil
}

func (m *mockExtractor) Name() string {
	return "mock-extractor"
}

// stubSearch implements driving.SearchService with fixed results.
type stubSearch struct {
	results []domain.SearchResult
	limits  []int
}

func (s *stubSearch) Search(_ context.Context, _ string, opts domain.SearchOptions) []domain.SearchResult {
	s.limits = append(s.limits, opts.Limit)
	return s.results
}

// failingStore wraps the memory store and fails selected operations.
type failingStore struct {
	*memory.Store
	listErr   error
	saveErr   error
	appendErr error
}

func (f *failingStore) ListChunks(ctx context.Context) ([]domain.Chunk, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.ListChunks(ctx)
}

func (f *failingStore) SaveContent(ctx context.Context, item *domain.ContentItem, chunks []domain.Chunk) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.SaveContent(ctx, item, chunks)
}

func (f *failingStore) Append(ctx context.Context, record *domain.QueryRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.Store.Append(ctx, record)
}

// --- Test helpers ---

// testDoc describes a single-chunk content item.
type testDoc struct {
	id        string
	url       string
	title     string
	content   string
	embedding []float32
}

// seedStore saves each doc as a content item with one chunk.
func seedStore(t *testing.T, store driven.ContentStore, docs ...testDoc) {
	t.Helper()
	ctx := context.Background()
	for _, d := range docs {
		item := &domain.ContentItem{
			ID:      d.id,
			URL:     d.url,
			Title:   d.title,
			Content: d.content,
		}
		chunk := domain.Chunk{
			ID:        domain.ChunkID(d.id, 0),
			ContentID: d.id,
			URL:       d.url,
			Title:     d.title,
			Content:   d.content,
			Embedding: d.embedding,
			Metadata:  domain.ChunkMetadata{Size: len([]rune(d.content))},
		}
		require.NoError(t, store.SaveContent(ctx, item, []domain.Chunk{chunk}))
	}
}

func result(id, url, title, content string, relevance float64) domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.Chunk{
			ID:        domain.ChunkID(id, 0),
			ContentID: id,
			URL:       url,
			Title:     title,
			Content:   content,
		},
		Relevance: relevance,
		Kind:      domain.MatchLexical,
	}
}
