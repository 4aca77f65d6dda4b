package driven

import "context"

// ContentExtractor turns a URL into readable text.
// Failures are reported as *domain.FetchError.
type ContentExtractor interface {
	// Extract fetches the page and returns its title and text.
	Extract(ctx context.Context, url string) (*Extraction, error)

	// Name identifies the extractor in logs.
	Name() string
}

// Extraction is the output of a ContentExtractor.
type Extraction struct {
	Title string
	Text  string

	// Mock is true when the text is placeholder content.
	Mock bool
}
