package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/core/ports/driving"
	"github.com/custodia-labs/pagewise/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	// defaultAlpha is the lexical weight for weighted fusion.
	defaultAlpha = 0.7

	maxHighlights      = 3
	maxHighlightLength = 200
)

// candidate holds a chunk and its signals before ranking.
type candidate struct {
	chunk      domain.Chunk
	order      int
	lexical    float64
	similarity float64
	relevance  float64
	kind       domain.MatchKind
}

// SearchService ranks stored chunks against a query using lexical
// scoring and cosine similarity. Chunks are scanned linearly.
type SearchService struct {
	store    driven.ContentStore
	embedder driven.EmbeddingService
	settings domain.RetrievalSettings
}

// NewSearchService creates a new search service.
// The embedder is optional; without it only lexical matching is used.
func NewSearchService(
	store driven.ContentStore,
	embedder driven.EmbeddingService,
	settings domain.RetrievalSettings,
) *SearchService {
	if !settings.Fusion.IsValid() {
		settings.Fusion = domain.FusionLexicalFirst
	}
	if settings.Alpha < 0 || settings.Alpha > 1 {
		settings.Alpha = defaultAlpha
	}
	if settings.SearchLimit <= 0 {
		settings.SearchLimit = domain.DefaultSearchLimit
	}
	return &SearchService{
		store:    store,
		embedder: embedder,
		settings: settings,
	}
}

// Search returns up to opts.Limit chunks ranked by relevance.
// Failures are logged and produce an empty result.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) []domain.SearchResult {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.settings.SearchLimit
	}
	logger.Debug("Limit: %d, fusion: %s", limit, s.settings.Fusion)

	chunks, err := s.store.ListChunks(ctx)
	if err != nil {
		logger.Warn("Search failed: list chunks: %v", err)
		return []domain.SearchResult{}
	}
	logger.Debug("Scanning %d chunks", len(chunks))

	lq := newLexicalQuery(query)
	candidates := make([]candidate, len(chunks))
	lexicalHits := 0
	for i := range chunks {
		candidates[i] = candidate{
			chunk:   chunks[i],
			order:   i,
			lexical: lq.score(strings.ToLower(chunks[i].Title), strings.ToLower(chunks[i].Content)),
		}
		if candidates[i].lexical > 0 {
			lexicalHits++
		}
	}
	logger.Debug("Lexical matches: %d", lexicalHits)

	var ranked []candidate
	switch s.settings.Fusion {
	case domain.FusionWeighted:
		ranked = s.weighted(ctx, query, candidates)
	default:
		if lexicalHits > 0 {
			ranked = lexicalOnly(candidates)
		} else {
			logger.Info("No lexical matches, falling back to vector search")
			ranked = s.vectorOnly(ctx, query, candidates)
		}
	}

	rankCandidates(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	terms := lq.terms()
	results := make([]domain.SearchResult, len(ranked))
	for i, c := range ranked {
		results[i] = domain.SearchResult{
			Chunk:      c.chunk,
			Relevance:  c.relevance,
			Similarity: c.similarity,
			Kind:       c.kind,
			Highlights: generateHighlights(c.chunk.Content, terms),
		}
	}
	logger.Info("Final results: %d", len(results))
	return results
}

// lexicalOnly keeps chunks with a positive lexical score.
func lexicalOnly(candidates []candidate) []candidate {
	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.lexical > 0 {
			c.relevance = c.lexical
			c.kind = domain.MatchLexical
			out = append(out, c)
		}
	}
	return out
}

// vectorOnly scores every chunk by similarity and gives each the flat
// fallback relevance, so ordering among them follows similarity.
func (s *SearchService) vectorOnly(ctx context.Context, query string, candidates []candidate) []candidate {
	queryVec, ok := s.embedQuery(ctx, query)
	if !ok {
		return nil
	}
	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		c.similarity = CosineSimilarity(queryVec, c.chunk.Embedding)
		c.relevance = domain.VectorFallbackRelevance
		c.kind = domain.MatchVector
		out = append(out, c)
	}
	return out
}

// weighted blends the lexical score, normalised by the best lexical score,
// with cosine similarity.
func (s *SearchService) weighted(ctx context.Context, query string, candidates []candidate) []candidate {
	maxLexical := 0.0
	for _, c := range candidates {
		if c.lexical > maxLexical {
			maxLexical = c.lexical
		}
	}

	queryVec, hasVec := s.embedQuery(ctx, query)
	alpha := s.settings.Alpha

	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		norm := 0.0
		if maxLexical > 0 {
			norm = c.lexical / maxLexical
		}
		if hasVec {
			c.similarity = CosineSimilarity(queryVec, c.chunk.Embedding)
		}
		c.relevance = alpha*norm + (1-alpha)*c.similarity
		if c.relevance <= 0 {
			continue
		}
		c.kind = domain.MatchFused
		out = append(out, c)
	}
	return out
}

func (s *SearchService) embedQuery(ctx context.Context, query string) ([]float32, bool) {
	if s.embedder == nil {
		logger.Debug("Vector search unavailable: no embedder")
		return nil, false
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, false
	}
	return vec, true
}

// rankCandidates orders by relevance, then similarity, then insertion
// order, then chunk ID, so identical inputs always rank identically.
func rankCandidates(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.relevance != b.relevance {
			return a.relevance > b.relevance
		}
		if a.similarity != b.similarity {
			return a.similarity > b.similarity
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.chunk.ID < b.chunk.ID
	})
}

// generateHighlights returns up to three sentences containing a query term.
func generateHighlights(content string, terms []string) []string {
	if len(terms) == 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		lower := strings.ToLower(sentence)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				highlights = append(highlights, truncateRunes(sentence, maxHighlightLength))
				break
			}
		}
		if len(highlights) >= maxHighlights {
			break
		}
	}
	return highlights
}

// splitSentences splits content on sentence terminators and newlines.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// truncateRunes cuts s to n characters and appends an ellipsis when cut.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
