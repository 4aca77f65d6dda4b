package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newItem builds a content item with n chunks carrying dim-sized vectors.
func newItem(id string, n, dim int) (*domain.ContentItem, []domain.Chunk) {
	item := &domain.ContentItem{
		ID:      id,
		URL:     "https://example.com/" + id,
		Title:   "Title " + id,
		Content: "content of " + id,
	}
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = float32(i+1) / float32(j+1)
		}
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(id, i),
			ContentID:  id,
			URL:        item.URL,
			Title:      item.Title,
			Content:    fmt.Sprintf("chunk %d of %s", i, id),
			ChunkIndex: i,
			Embedding:  vec,
			Metadata:   domain.ChunkMetadata{Size: 10, Overlap: i * 2},
		}
	}
	return item, chunks
}

// ==================== Store Creation and Migration Tests ====================

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	item, chunks := newItem("a", 2, 4)
	require.NoError(t, store.ContentStore().SaveContent(ctx, item, chunks))
	require.NoError(t, store.Close())

	// Migrations must be a no-op on a current schema.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	v, err := store.schemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	got, err := store.ContentStore().GetContent(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalChunks)
}

func TestMigrate_AppliesOnlyNewVersions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_initial.up.sql": {Data: []byte("CREATE TABLE should_not_run (x INTEGER);")},
		"002_extra.up.sql":   {Data: []byte("CREATE TABLE extra (x INTEGER);")},
		"002_extra.down.sql": {Data: []byte("DROP TABLE extra;")},
		"README.md":          {Data: []byte("ignored")},
	}
	require.NoError(t, store.migrate(fsys))
	require.NoError(t, store.migrate(fsys))

	v, err := store.schemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	var n int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE name = 'should_not_run'").Scan(&n))
	assert.Zero(t, n)
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	store := setupTestStore(t)

	fsys := fstest.MapFS{
		"005_broken.up.sql": {Data: []byte("CREATE TABLE ok_table (x INTEGER); NOT SQL;")},
	}
	require.Error(t, store.migrate(fsys))

	v, err := store.schemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

// ==================== Content Store Tests ====================

func TestContentStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	cs := store.ContentStore()
	ctx := context.Background()

	item, chunks := newItem("doc1", 3, 8)
	require.NoError(t, cs.SaveContent(ctx, item, chunks))

	assert.Equal(t, 3, item.TotalChunks)
	assert.Equal(t, []string{"doc1_chunk_0", "doc1_chunk_1", "doc1_chunk_2"}, item.ChunkIDs)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := cs.GetContent(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, item.URL, got.URL)
	assert.Equal(t, item.Title, got.Title)
	assert.Equal(t, item.Content, got.Content)
	assert.Equal(t, item.ChunkIDs, got.ChunkIDs)
	assert.Equal(t, got.TotalChunks, len(got.ChunkIDs))

	stored, err := cs.GetChunks(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, c := range stored {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, chunks[i].Embedding, c.Embedding)
		assert.Equal(t, chunks[i].Content, c.Content)
		assert.Equal(t, i*2, c.Metadata.Overlap)
		assert.False(t, c.Metadata.CreatedAt.IsZero())
	}
}

func TestContentStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ContentStore().GetContent(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, domain.IsStorageError(err))
}

func TestContentStore_SaveReplacesChunks(t *testing.T) {
	store := setupTestStore(t)
	cs := store.ContentStore()
	ctx := context.Background()

	item, chunks := newItem("doc", 4, 2)
	require.NoError(t, cs.SaveContent(ctx, item, chunks))

	item, chunks = newItem("doc", 2, 2)
	require.NoError(t, cs.SaveContent(ctx, item, chunks))

	all, err := cs.ListChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestContentStore_SaveRejectsForeignChunk(t *testing.T) {
	store := setupTestStore(t)

	item, chunks := newItem("a", 1, 2)
	chunks[0].ContentID = "b"

	err := store.ContentStore().SaveContent(context.Background(), item, chunks)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestContentStore_DimensionMismatch(t *testing.T) {
	store := setupTestStore(t)
	cs := store.ContentStore()
	ctx := context.Background()

	item, chunks := newItem("a", 1, 4)
	require.NoError(t, cs.SaveContent(ctx, item, chunks))

	other, otherChunks := newItem("b", 1, 3)
	err := cs.SaveContent(ctx, other, otherChunks)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// The failed transaction left nothing behind.
	_, err = cs.GetContent(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContentStore_SaveChunk(t *testing.T) {
	store := setupTestStore(t)
	cs := store.ContentStore()
	ctx := context.Background()

	t.Run("requires parent", func(t *testing.T) {
		_, chunks := newItem("orphan", 1, 2)
		err := cs.SaveChunk(ctx, chunks[0])
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("appends to parent", func(t *testing.T) {
		item, chunks := newItem("p", 2, 2)
		require.NoError(t, cs.SaveContent(ctx, item, chunks[:1]))
		require.NoError(t, cs.SaveChunk(ctx, chunks[1]))

		got, err := cs.GetContent(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, 2, got.TotalChunks)
	})

	t.Run("without embedding", func(t *testing.T) {
		item, chunks := newItem("q", 1, 2)
		require.NoError(t, cs.SaveContent(ctx, item, chunks))

		chunks[0].Embedding = nil
		require.NoError(t, cs.SaveChunk(ctx, chunks[0]))

		got, err := cs.GetChunks(ctx, "q")
		require.NoError(t, err)
		assert.Nil(t, got[0].Embedding)
	})
}

func TestContentStore_ListOrder(t *testing.T) {
	store := setupTestStore(t)
	cs := store.ContentStore()
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		item, chunks := newItem(id, 2, 2)
		require.NoError(t, cs.SaveContent(ctx, item, chunks))
		time.Sleep(2 * time.Millisecond)
	}

	items, err := cs.ListContent(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].ID)
	assert.Equal(t, "third", items[2].ID)
	assert.Equal(t, 2, items[1].TotalChunks)

	chunks, err := cs.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 6)
	assert.Equal(t, "first_chunk_0", chunks[0].ID)
	assert.Equal(t, "third_chunk_1", chunks[5].ID)
	assert.Len(t, chunks[0].Embedding, 2)
}

func TestContentStore_DeleteCascades(t *testing.T) {
	store := setupTestStore(t)
	cs := store.ContentStore()
	ctx := context.Background()

	for _, id := range []string{"keep", "drop"} {
		item, chunks := newItem(id, 3, 2)
		require.NoError(t, cs.SaveContent(ctx, item, chunks))
	}

	require.NoError(t, cs.DeleteContent(ctx, "drop"))

	_, err := cs.GetContent(ctx, "drop")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := cs.ListChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, "keep", c.ContentID)
	}

	var orphans int
	require.NoError(t, store.db.QueryRow(`
		SELECT COUNT(*) FROM embeddings WHERE chunk_id NOT IN (SELECT id FROM chunks)
	`).Scan(&orphans))
	assert.Zero(t, orphans)

	// Deleting an unknown id is a no-op.
	assert.NoError(t, cs.DeleteContent(ctx, "drop"))
}

func TestContentStore_ConcurrentReads(t *testing.T) {
	store := setupTestStore(t)
	cs := store.ContentStore()
	ctx := context.Background()

	item, chunks := newItem("c", 5, 4)
	require.NoError(t, cs.SaveContent(ctx, item, chunks))

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cs.ListChunks(ctx)
			if err == nil && len(got) != 5 {
				err = fmt.Errorf("got %d chunks", len(got))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestContentStore_ConcurrentWrites(t *testing.T) {
	store := setupTestStore(t)
	cs := store.ContentStore()
	ctx := context.Background()

	const writers = 40
	var wg sync.WaitGroup
	errs := make(chan error, writers*2)
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			item, chunks := newItem(id, 2, 4)
			if err := cs.SaveContent(ctx, item, chunks[:1]); err != nil {
				errs <- err
				return
			}
			errs <- cs.SaveChunk(ctx, chunks[1])
		}(i)
		go func() {
			defer wg.Done()
			_, err := cs.ListChunks(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	stats, err := store.Maintenance().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, stats.TotalContent)
	assert.Equal(t, writers*2, stats.TotalChunks)
}

// ==================== History Store Tests ====================

func TestHistoryStore(t *testing.T) {
	store := setupTestStore(t)
	hs := store.HistoryStore()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, hs.Append(ctx, &domain.QueryRecord{
			ID:             fmt.Sprintf("q%d", i),
			Question:       fmt.Sprintf("question %d", i),
			Answer:         "answer",
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			Sources:        []string{"https://a.test"},
			QueryEmbedding: []float32{0.5, 0.25},
		}))
	}

	n, err := hs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records, err := hs.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "q2", records[0].ID)
	assert.Equal(t, "q1", records[1].ID)
	assert.Equal(t, []string{"https://a.test"}, records[0].Sources)
	assert.Equal(t, []float32{0.5, 0.25}, records[0].QueryEmbedding)
	assert.True(t, records[0].Timestamp.Equal(base.Add(2*time.Minute)))

	all, err := hs.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHistoryStore_EmptySourcesAndDuplicate(t *testing.T) {
	store := setupTestStore(t)
	hs := store.HistoryStore()
	ctx := context.Background()

	rec := &domain.QueryRecord{ID: "x", Question: "q", Answer: "a"}
	require.NoError(t, hs.Append(ctx, rec))
	assert.False(t, rec.Timestamp.IsZero())

	records, err := hs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Sources)
	assert.Nil(t, records[0].QueryEmbedding)

	// Records are append-only; reusing an id is a storage failure.
	err = hs.Append(ctx, &domain.QueryRecord{ID: "x", Question: "q", Answer: "a"})
	assert.True(t, domain.IsStorageError(err))

	assert.ErrorIs(t, hs.Append(ctx, &domain.QueryRecord{}), domain.ErrInvalidInput)
}

func TestHistory_SurvivesContentDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	item, chunks := newItem("a", 1, 2)
	require.NoError(t, store.ContentStore().SaveContent(ctx, item, chunks))
	require.NoError(t, store.HistoryStore().Append(ctx, &domain.QueryRecord{
		ID: "q", Question: "q", Answer: "a", Sources: []string{item.URL},
	}))

	require.NoError(t, store.ContentStore().DeleteContent(ctx, "a"))

	n, err := store.HistoryStore().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// ==================== Maintenance Tests ====================

func TestMaintenance_StatsAndClear(t *testing.T) {
	store := setupTestStore(t)
	m := store.Maintenance()
	ctx := context.Background()

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalContent)
	assert.Zero(t, stats.VectorDimension)

	for _, id := range []string{"a", "b"} {
		item, chunks := newItem(id, 2, 6)
		require.NoError(t, store.ContentStore().SaveContent(ctx, item, chunks))
	}
	require.NoError(t, store.HistoryStore().Append(ctx, &domain.QueryRecord{ID: "q", Question: "q", Answer: "a"}))

	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalContent)
	assert.Equal(t, 4, stats.TotalChunks)
	assert.Equal(t, 1, stats.TotalQueries)
	assert.Equal(t, 6, stats.VectorDimension)
	assert.Positive(t, stats.StorageSizeBytes)

	require.NoError(t, m.Clear(ctx))

	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalContent)
	assert.Zero(t, stats.TotalChunks)
	assert.Zero(t, stats.TotalQueries)
}

func TestMaintenance_Health(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	health := store.Maintenance().Health(ctx)
	assert.True(t, health.Healthy)
	assert.Empty(t, health.Issues)

	_, err := store.db.Exec("DROP TABLE embeddings")
	require.NoError(t, err)

	health = store.Maintenance().Health(ctx)
	assert.False(t, health.Healthy)
	assert.Contains(t, health.Issues, `missing table "embeddings"`)

	require.NoError(t, store.Close())
	health = store.Maintenance().Health(ctx)
	assert.False(t, health.Healthy)
}

func TestClosedStore(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	ctx := context.Background()
	_, err := store.ContentStore().ListChunks(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	assert.True(t, domain.IsStorageError(err))

	item, chunks := newItem("a", 1, 2)
	assert.ErrorIs(t, store.ContentStore().SaveContent(ctx, item, chunks), domain.ErrStoreClosed)
	assert.ErrorIs(t, store.HistoryStore().Append(ctx, &domain.QueryRecord{ID: "x"}), domain.ErrStoreClosed)
	_, err = store.Maintenance().Stats(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

// ==================== Helper Tests ====================

func TestFloat32Conversion(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
	}{
		{"nil", nil},
		{"values", []float32{0, 1.5, -2.25, 3.4e38}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, bytesToFloat32Slice(float32SliceToBytes(tt.in)))
		})
	}
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, float32SliceToBytes([]float32{1}))
}
