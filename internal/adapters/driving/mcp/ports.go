package mcp

import (
	"github.com/custodia-labs/pagewise/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
// Tools and resources backed by a nil port are not registered.
type Ports struct {
	// Search provides retrieval. Required.
	Search driving.SearchService

	// Answer answers questions with citations.
	Answer driving.AnswerService

	// Ingest saves new pages.
	Ingest driving.IngestService

	// Content lists saved pages and reports stats.
	Content driving.ContentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
