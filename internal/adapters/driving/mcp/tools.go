package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to match against saved pages"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ContentID  string   `json:"content_id"`
	ChunkID    string   `json:"chunk_id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Relevance  float64  `json:"relevance"`
	Kind       string   `json:"kind"`
	Highlights []string `json:"highlights,omitempty"`
	Content    string   `json:"content,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from saved pages"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer                string           `json:"answer"`
	Sources               []CitationOutput `json:"sources"`
	TotalChunksConsidered int              `json:"total_chunks_considered"`
}

// CitationOutput is a source of an answer.
type CitationOutput struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	ChunkID   string  `json:"chunk_id"`
	Relevance float64 `json:"relevance"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	URL   string `json:"url" jsonschema:"the page to save"`
	Title string `json:"title,omitempty" jsonschema:"title to use when text is given"`
	Text  string `json:"text,omitempty" jsonschema:"page text; when set the URL is not fetched"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	ContentID   string `json:"content_id"`
	Title       string `json:"title"`
	TotalChunks int    `json:"total_chunks"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	TotalContent     int   `json:"total_content"`
	TotalChunks      int   `json:"total_chunks"`
	TotalQueries     int   `json:"total_queries"`
	StorageSizeBytes int64 `json:"storage_size_bytes"`
	VectorDimension  int   `json:"vector_dimension"`
}

// registerTools registers a tool for every available port.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search saved web pages and return the best matching passages",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from saved web pages, with source URLs",
		}, s.handleAsk)
	}

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Save a web page so it can be searched and asked about",
		}, s.handleIngest)
	}

	if s.ports.Content != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "stats",
			Description: "Report how many pages, chunks and questions are stored",
		}, s.handleStats)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	results := s.ports.Search.Search(ctx, input.Query, domain.SearchOptions{Limit: limit})

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			ContentID:  results[i].Chunk.ContentID,
			ChunkID:    results[i].Chunk.ID,
			Title:      results[i].Chunk.Title,
			URL:        results[i].Chunk.URL,
			Relevance:  results[i].Relevance,
			Kind:       string(results[i].Kind),
			Highlights: results[i].Highlights,
			Content:    results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.AnswerQuestion(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("answering question: %w", err)
	}

	output := AskOutput{
		Answer:                answer.Text,
		Sources:               make([]CitationOutput, len(answer.Sources)),
		TotalChunksConsidered: answer.TotalChunksConsidered,
	}
	for i, src := range answer.Sources {
		output.Sources[i] = CitationOutput{
			Title:     src.Title,
			URL:       src.URL,
			ChunkID:   src.ChunkID,
			Relevance: src.Relevance,
		}
	}
	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	var (
		item *domain.ContentItem
		err  error
	)
	if strings.TrimSpace(input.Text) != "" {
		item, err = s.ports.Ingest.IngestText(ctx, input.URL, input.Title, input.Text)
	} else {
		item, err = s.ports.Ingest.Ingest(ctx, input.URL)
	}
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("ingesting %s: %w", input.URL, err)
	}

	return nil, IngestOutput{
		ContentID:   item.ID,
		Title:       item.Title,
		TotalChunks: item.TotalChunks,
	}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Content.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, fmt.Errorf("reading stats: %w", err)
	}

	return nil, StatsOutput{
		TotalContent:     stats.TotalContent,
		TotalChunks:      stats.TotalChunks,
		TotalQueries:     stats.TotalQueries,
		StorageSizeBytes: stats.StorageSizeBytes,
		VectorDimension:  stats.VectorDimension,
	}, nil
}
