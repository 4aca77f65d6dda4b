package mcp

import (
	"context"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.SearchResult
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) []domain.SearchResult {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) AnswerQuestion(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	item     *domain.ContentItem
	err      error
	fetched  []string
	textURLs []string
}

func (m *mockIngestService) Ingest(_ context.Context, url string) (*domain.ContentItem, error) {
	m.fetched = append(m.fetched, url)
	return m.item, m.err
}

func (m *mockIngestService) IngestText(_ context.Context, url, _, _ string) (*domain.ContentItem, error) {
	m.textURLs = append(m.textURLs, url)
	return m.item, m.err
}

// mockContentService is a mock implementation of driving.ContentService.
type mockContentService struct {
	items []domain.ContentItem
	stats *domain.Stats
	err   error
}

func (m *mockContentService) List(_ context.Context) ([]domain.ContentItem, error) {
	return m.items, m.err
}

func (m *mockContentService) Get(_ context.Context, id string) (*domain.ContentItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockContentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockContentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockContentService) ClearAll(_ context.Context) error {
	return m.err
}

func (m *mockContentService) Stats(_ context.Context) (*domain.Stats, error) {
	return m.stats, m.err
}

func (m *mockContentService) Health(_ context.Context) domain.HealthStatus {
	return domain.HealthStatus{Healthy: m.err == nil}
}

func (m *mockContentService) History(_ context.Context, _ int) ([]domain.QueryRecord, error) {
	return nil, m.err
}
