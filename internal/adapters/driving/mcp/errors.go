// Package mcp exposes pagewise over the Model Context Protocol so AI
// assistants can search saved pages, ask questions and ingest new pages.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
