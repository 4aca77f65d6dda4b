// Package mock produces deterministic placeholder content for a URL.
// It keeps ingestion answerable when the real page cannot be fetched.
package mock

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

// Extractor returns placeholder text derived only from the URL.
type Extractor struct{}

// New creates a mock extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string {
	return "mock"
}

// Extract never fails. The same URL always yields the same content.
func (e *Extractor) Extract(_ context.Context, rawURL string) (*driven.Extraction, error) {
	host, topic := describe(rawURL)

	title := "Content from " + host
	if topic != "" {
		r := []rune(topic)
		title = string(unicode.ToUpper(r[0])) + string(r[1:]) + " - " + host
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "This is placeholder content for %s. ", rawURL)
	fmt.Fprintf(&sb, "The page could not be fetched, so a summary was generated from its address. ")
	if topic != "" {
		fmt.Fprintf(&sb, "The page appears to be about %s and is published on %s. ", topic, host)
	} else {
		fmt.Fprintf(&sb, "The page is published on %s. ", host)
	}
	sb.WriteString("Re-ingest the URL once it is reachable to index the real text.")

	return &driven.Extraction{
		Title: title,
		Text:  sb.String(),
		Mock:  true,
	}, nil
}

// describe splits a URL into its host and the words of its path.
func describe(rawURL string) (host, topic string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL, ""
	}

	words := strings.FieldsFunc(u.Path, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	// Drop file extensions such as "index html".
	if n := len(words); n > 1 && (words[n-1] == "html" || words[n-1] == "htm") {
		words = words[:n-1]
	}
	return u.Host, strings.ToLower(strings.Join(words, " "))
}
