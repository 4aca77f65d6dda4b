package driving

import (
	"context"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// SearchService provides retrieval over ingested content.
type SearchService interface {
	// Search returns ranked chunks for query. It never fails: internal
	// errors are logged and produce an empty result.
	Search(ctx context.Context, query string, opts domain.SearchOptions) []domain.SearchResult
}

// AnswerService answers questions from retrieved content.
type AnswerService interface {
	// AnswerQuestion retrieves context, synthesises an answer and records it in history.
	AnswerQuestion(ctx context.Context, question string) (*domain.Answer, error)
}
