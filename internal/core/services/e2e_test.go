package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagewise/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagewise/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/postprocessors/chunker"
)

// app wires the services over one store the way the CLI does.
type app struct {
	ingest  *IngestService
	search  *SearchService
	answer  *AnswerService
	content *ContentService
}

type storeSet struct {
	content     driven.ContentStore
	history     driven.HistoryStore
	maintenance driven.Maintenance
}

func newApp(stores storeSet) *app {
	embedder := hash.NewEmbeddingService(testDims)
	search := NewSearchService(stores.content, embedder, defaultRetrieval())
	return &app{
		ingest:  NewIngestService(&mockExtractor{}, chunker.New(), embedder, stores.content),
		search:  search,
		answer:  NewAnswerService(search, stores.history, embedder, nil, nil, AnswerConfig{}),
		content: NewContentService(stores.content, stores.history, stores.maintenance, embedder),
	}
}

// forEachStore runs fn against the in-memory and the SQLite store.
func forEachStore(t *testing.T, fn func(t *testing.T, a *app)) {
	t.Run("memory", func(t *testing.T) {
		store := memory.NewStore()
		fn(t, newApp(storeSet{store, store, store}))
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := sqlite.NewStore(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		fn(t, newApp(storeSet{store.ContentStore(), store.HistoryStore(), store.Maintenance()}))
	})
}

func TestEndToEnd_SingleDocument(t *testing.T) {
	forEachStore(t, func(t *testing.T, a *app) {
		ctx := context.Background()

		item, err := a.ingest.IngestText(ctx, "https://react.dev", "React Docs",
			"React is a JavaScript library. It uses components.")
		require.NoError(t, err)
		assert.Equal(t, 1, item.TotalChunks)

		results := a.search.Search(ctx, "React", domain.SearchOptions{Limit: domain.DefaultPreviewLimit})
		require.Len(t, results, 1)
		assert.Equal(t, item.ID, results[0].Chunk.ContentID)
		assert.GreaterOrEqual(t, results[0].Relevance, 0.8)
		assert.InDelta(t, 2.1, results[0].Relevance, 1e-9)

		answer, err := a.answer.AnswerQuestion(ctx, "What is React?")
		require.NoError(t, err)
		assert.NotEmpty(t, answer.Text)
		assert.NotEqual(t, NotEnoughInformation, answer.Text)
		assert.Contains(t, answer.SourceURLs(), "https://react.dev")

		history, err := a.content.History(ctx, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Len(t, history[0].QueryEmbedding, testDims)
	})
}

func TestEndToEnd_NegativeFiltering(t *testing.T) {
	forEachStore(t, func(t *testing.T, a *app) {
		ctx := context.Background()

		python, err := a.ingest.IngestText(ctx, "https://python.org", "Python Guide",
			"Python is a popular programming language used for data science and scripting.")
		require.NoError(t, err)
		react, err := a.ingest.IngestText(ctx, "https://react.dev", "React Docs",
			"React is a JavaScript library. It uses components.")
		require.NoError(t, err)

		results := a.search.Search(ctx, "Python", domain.SearchOptions{Limit: 5})

		require.Len(t, results, 1)
		assert.Equal(t, python.ID, results[0].Chunk.ContentID)
		for _, r := range results {
			assert.NotEqual(t, react.ID, r.Chunk.ContentID)
		}
	})
}

func TestEndToEnd_EmptyStore(t *testing.T) {
	forEachStore(t, func(t *testing.T, a *app) {
		ctx := context.Background()

		assert.Empty(t, a.search.Search(ctx, "", domain.SearchOptions{Limit: 3}))

		answer, err := a.answer.AnswerQuestion(ctx, "What is anything?")
		require.NoError(t, err)
		assert.Equal(t, NotEnoughInformation, answer.Text)
		assert.Empty(t, answer.Sources)
	})
}

func TestEndToEnd_StatsAndCascadeDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, a *app) {
		ctx := context.Background()

		var ids []string
		totalChunks := 0
		for _, text := range []string{longText(50), longText(10), "Consensus in one line of text."} {
			item, err := a.ingest.IngestText(ctx, "https://example.com", "Consensus", text)
			require.NoError(t, err)
			ids = append(ids, item.ID)
			totalChunks += item.TotalChunks
		}

		stats, err := a.content.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalContent)
		assert.Equal(t, totalChunks, stats.TotalChunks)
		assert.Equal(t, testDims, stats.VectorDimension)

		require.NoError(t, a.content.Delete(ctx, ids[0]))
		require.NoError(t, a.content.Delete(ctx, ids[0]))

		for _, r := range a.search.Search(ctx, "consensus", domain.SearchOptions{Limit: 100}) {
			assert.NotEqual(t, ids[0], r.Chunk.ContentID)
		}

		stats, err = a.content.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalContent)

		assert.True(t, a.content.Health(ctx).Healthy)
	})
}
