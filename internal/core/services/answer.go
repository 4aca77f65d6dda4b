package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/core/ports/driving"
	"github.com/custodia-labs/pagewise/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// NotEnoughInformation is the answer given when nothing relevant is stored.
const NotEnoughInformation = "I don't have enough information to answer that question. " +
	"Try ingesting some relevant content first."

const (
	maxSnippetLength = 150

	// minSignificantWordLength is the length a question word must exceed
	// to be used when picking a snippet.
	minSignificantWordLength = 3

	answerMaxTokens   = 1024
	answerTemperature = 0.2
)

// AnswerConfig tunes the answer service.
type AnswerConfig struct {
	// Limit is the number of chunks retrieved per question.
	Limit int

	// Retries is the number of extra LLM attempts before the template
	// synthesiser is used.
	Retries int
}

// AnswerService answers questions from retrieved chunks and records
// every answer in history.
type AnswerService struct {
	search   driving.SearchService
	history  driven.HistoryStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore
	config   AnswerConfig
	now      func() time.Time
}

// NewAnswerService creates a new answer service.
// The embedder, llm and prompts parameters are optional (can be nil).
// Without an LLM and a prompt store every answer uses the templates.
func NewAnswerService(
	search driving.SearchService,
	history driven.HistoryStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	config AnswerConfig,
) *AnswerService {
	if config.Limit <= 0 {
		config.Limit = domain.DefaultAnswerLimit
	}
	if config.Retries < 0 {
		config.Retries = 0
	}
	return &AnswerService{
		search:   search,
		history:  history,
		embedder: embedder,
		llm:      llm,
		prompts:  prompts,
		config:   config,
		now:      time.Now,
	}
}

// AnswerQuestion retrieves context for question, synthesises an answer
// and appends it to history. Only history failures are returned.
func (s *AnswerService) AnswerQuestion(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Answer")
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	results := s.search.Search(ctx, question, domain.SearchOptions{Limit: s.config.Limit})
	logger.Debug("Retrieved %d chunks for %q", len(results), question)

	answer := &domain.Answer{
		Sources:               citations(results),
		TotalChunksConsidered: len(results),
	}
	switch {
	case len(results) == 0:
		answer.Text = NotEnoughInformation
	default:
		if text, ok := s.generate(ctx, question, results); ok {
			answer.Text = text
			answer.Generated = true
		} else {
			answer.Text = synthesiseAnswer(question, results)
		}
	}

	if err := s.record(ctx, question, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// generate asks the LLM for an answer, retrying on failure.
// It returns false when the template synthesiser should be used instead.
func (s *AnswerService) generate(ctx context.Context, question string, results []domain.SearchResult) (string, bool) {
	if s.llm == nil || s.prompts == nil {
		return "", false
	}

	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Warn("Load answer prompt: %v", err)
		return "", false
	}
	system, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		logger.Debug("No answer system prompt: %v", err)
		system = ""
	}

	prompt := fmt.Sprintf(tmpl, question, buildContext(results), buildSourceList(results))
	opts := driven.GenerateOptions{
		System:      system,
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	}

	attempts := s.config.Retries + 1
	for i := 1; i <= attempts; i++ {
		start := time.Now()
		text, err := s.llm.Generate(ctx, prompt, opts)
		logger.Elapsed("LLM answer", start)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), true
		}
		if err == nil {
			err = fmt.Errorf("%s returned an empty answer", s.llm.ModelName())
		}
		logger.Warn("LLM answer attempt %d/%d failed: %v", i, attempts, err)
		if ctx.Err() != nil {
			break
		}
	}
	logger.Info("Falling back to template answer")
	return "", false
}

// record appends the answered question to history.
func (s *AnswerService) record(ctx context.Context, question string, answer *domain.Answer) error {
	var queryVec []float32
	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, question)
		if err != nil {
			logger.Warn("Query embedding for history failed: %v", err)
		} else {
			queryVec = vec
		}
	}

	rec := &domain.QueryRecord{
		ID:             uuid.NewString(),
		Question:       question,
		Answer:         answer.Text,
		Timestamp:      s.now(),
		Sources:        answer.SourceURLs(),
		QueryEmbedding: queryVec,
	}
	if err := s.history.Append(ctx, rec); err != nil {
		return fmt.Errorf("record query: %w", domain.NewStorageError("append history", err))
	}
	return nil
}

// citations returns one citation per URL, most relevant first.
func citations(results []domain.SearchResult) []domain.Citation {
	out := make([]domain.Citation, 0, len(results))
	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.Chunk.URL] {
			continue
		}
		seen[r.Chunk.URL] = true
		out = append(out, domain.Citation{
			URL:       r.Chunk.URL,
			Title:     r.Chunk.Title,
			ChunkID:   r.Chunk.ID,
			Relevance: r.Relevance,
		})
	}
	return out
}

func buildContext(results []domain.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n%s", i+1, r.Chunk.Title, r.Chunk.Content)
	}
	return b.String()
}

func buildSourceList(results []domain.SearchResult) string {
	var b strings.Builder
	for i, c := range citations(results) {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (%s)", c.Title, c.URL)
	}
	return b.String()
}

// questionKind classifies a question for the template synthesiser.
type questionKind int

const (
	questionGeneric questionKind = iota
	questionExplanatory
	questionLocational
)

func classifyQuestion(question string) questionKind {
	q := strings.ToLower(question)
	for _, w := range []string{"what", "how", "why"} {
		if containsTerm(q, w) {
			return questionExplanatory
		}
	}
	for _, w := range []string{"when", "where"} {
		if containsTerm(q, w) {
			return questionLocational
		}
	}
	return questionGeneric
}

// synthesiseAnswer builds a template answer from the top result.
func synthesiseAnswer(question string, results []domain.SearchResult) string {
	top := results[0].Chunk
	title := top.Title
	if title == "" {
		title = top.URL
	}
	snippet := extractSnippet(top.Content, question)

	switch classifyQuestion(question) {
	case questionExplanatory:
		return fmt.Sprintf("Based on %q: %s", title, snippet)
	case questionLocational:
		return fmt.Sprintf("According to %q (%s): %s", title, top.URL, snippet)
	default:
		others := len(results) - 1
		noun := "chunks"
		if others == 1 {
			noun = "chunk"
		}
		return fmt.Sprintf("From %q: %s I found %d other relevant %s that may help.",
			title, snippet, others, noun)
	}
}

// extractSnippet returns the first sentence of content that mentions enough
// of the question's significant words, or the first sentence if none does.
func extractSnippet(content, question string) string {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return truncateRunes(strings.TrimSpace(content), maxSnippetLength)
	}

	var significant []string
	for _, w := range splitWords(strings.ToLower(question)) {
		if utf8.RuneCountInString(w) > minSignificantWordLength {
			significant = append(significant, w)
		}
	}
	need := min(2, len(significant))

	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		matched := 0
		for _, w := range significant {
			if strings.Contains(lower, w) {
				matched++
			}
		}
		if matched >= need {
			return truncateRunes(sentence, maxSnippetLength)
		}
	}
	return truncateRunes(sentences[0], maxSnippetLength)
}
