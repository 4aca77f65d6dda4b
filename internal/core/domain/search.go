package domain

// Default result counts for the different callers of search.
const (
	DefaultSearchLimit  = 10
	DefaultAnswerLimit  = 5
	DefaultPreviewLimit = 3
)

// VectorFallbackRelevance is the flat relevance given to results that
// were found by vector similarity alone.
const VectorFallbackRelevance = 0.5

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int
}

// MatchKind records which signal produced a search result.
type MatchKind string

// Available match kinds.
const (
	MatchLexical MatchKind = "lexical"
	MatchVector  MatchKind = "vector"
	MatchFused   MatchKind = "fused"
)

// SearchResult represents a single retrieved chunk.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Relevance is the ranking score: additive for lexical matches,
	// 0..1 for vector and fused results.
	Relevance float64

	// Similarity is the cosine similarity between query and chunk, when computed.
	Similarity float64

	// Kind is the signal that produced this result.
	Kind MatchKind

	// Highlights contains sentences with matched terms.
	Highlights []string
}

// Citation is a source attached to an answer.
type Citation struct {
	URL       string
	Title     string
	ChunkID   string
	Relevance float64
}

// Answer is the result of answering a question.
type Answer struct {
	// Text is the prose answer.
	Text string

	// Sources lists the cited content, most relevant first, one per URL.
	Sources []Citation

	// TotalChunksConsidered is the number of retrieved chunks.
	TotalChunksConsidered int

	// Generated is true when the answer came from an LLM rather than the template synthesiser.
	Generated bool
}

// SourceURLs returns the cited URLs in order.
func (a *Answer) SourceURLs() []string {
	urls := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		urls = append(urls, s.URL)
	}
	return urls
}
