// Package fallback chains a primary extractor with a secondary one.
package fallback

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

// Extractor tries primary and degrades to secondary on any failure.
type Extractor struct {
	primary   driven.ContentExtractor
	secondary driven.ContentExtractor
}

// New creates a fallback extractor.
func New(primary, secondary driven.ContentExtractor) *Extractor {
	return &Extractor{primary: primary, secondary: secondary}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string {
	return fmt.Sprintf("%s+%s", e.primary.Name(), e.secondary.Name())
}

// Extract returns the primary result, or the secondary one when the
// primary fails. The secondary error is returned only if both fail.
func (e *Extractor) Extract(ctx context.Context, url string) (*driven.Extraction, error) {
	out, err := e.primary.Extract(ctx, url)
	if err == nil {
		return out, nil
	}

	logger.Warn("%s extractor failed, using %s: %v", e.primary.Name(), e.secondary.Name(), err)
	return e.secondary.Extract(ctx, url)
}
