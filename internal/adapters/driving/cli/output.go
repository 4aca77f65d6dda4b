package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// JSON views of domain types. Embeddings are left out.

type contentJSON struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	TotalChunks int       `json:"total_chunks"`
	ChunkIDs    []string  `json:"chunk_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

type chunkJSON struct {
	ID         string `json:"id"`
	ContentID  string `json:"content_id"`
	ChunkIndex int    `json:"chunk_index"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

type searchResultJSON struct {
	Chunk      chunkJSON `json:"chunk"`
	Relevance  float64   `json:"relevance"`
	Similarity float64   `json:"similarity"`
	Kind       string    `json:"kind"`
	Highlights []string  `json:"highlights"`
}

type citationJSON struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	ChunkID   string  `json:"chunk_id"`
	Relevance float64 `json:"relevance"`
}

type answerJSON struct {
	Answer                string         `json:"answer"`
	Sources               []citationJSON `json:"sources"`
	TotalChunksConsidered int            `json:"total_chunks_considered"`
	Generated             bool           `json:"generated"`
}

type queryRecordJSON struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources"`
}

func toContentJSON(item *domain.ContentItem) contentJSON {
	return contentJSON{
		ID:          item.ID,
		URL:         item.URL,
		Title:       item.Title,
		TotalChunks: item.TotalChunks,
		ChunkIDs:    item.ChunkIDs,
		CreatedAt:   item.CreatedAt,
	}
}

func toChunkJSON(c *domain.Chunk) chunkJSON {
	return chunkJSON{
		ID:         c.ID,
		ContentID:  c.ContentID,
		ChunkIndex: c.ChunkIndex,
		URL:        c.URL,
		Title:      c.Title,
		Content:    c.Content,
	}
}

func toSearchResultsJSON(results []domain.SearchResult) []searchResultJSON {
	out := make([]searchResultJSON, 0, len(results))
	for i := range results {
		out = append(out, searchResultJSON{
			Chunk:      toChunkJSON(&results[i].Chunk),
			Relevance:  results[i].Relevance,
			Similarity: results[i].Similarity,
			Kind:       string(results[i].Kind),
			Highlights: results[i].Highlights,
		})
	}
	return out
}

func toAnswerJSON(a *domain.Answer) answerJSON {
	sources := make([]citationJSON, 0, len(a.Sources))
	for _, s := range a.Sources {
		sources = append(sources, citationJSON(s))
	}
	return answerJSON{
		Answer:                a.Text,
		Sources:               sources,
		TotalChunksConsidered: a.TotalChunksConsidered,
		Generated:             a.Generated,
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// truncate shortens s to maxLen runes on one line.
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
