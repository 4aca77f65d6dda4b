package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// uriScheme is the custom URI scheme for pagewise resources.
const uriScheme = "pagewise://"

// registerResources registers the content resources when the content port is set.
func (s *Server) registerResources() {
	if s.ports.Content == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "content",
		Name:        "content",
		Description: "All saved pages",
		MIMEType:    "application/json",
	}, s.handleContentListResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "content/{contentId}",
		Name:        "content-text",
		Description: "Extracted text of a saved page",
		MIMEType:    "text/plain",
	}, s.handleContentResource)
}

// handleContentListResource returns all saved pages.
func (s *Server) handleContentListResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	items, err := s.ports.Content.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}

	type contentInfo struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		TotalChunks int    `json:"total_chunks"`
		Resource    string `json:"resource"`
	}

	infos := make([]contentInfo, len(items))
	for i := range items {
		infos[i] = contentInfo{
			ID:          items[i].ID,
			Title:       items[i].Title,
			URL:         items[i].URL,
			TotalChunks: items[i].TotalChunks,
			Resource:    uriScheme + "content/" + items[i].ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleContentResource returns the text of one saved page.
func (s *Server) handleContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractContentID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	item, err := s.ports.Content.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting content: %w", err)
	}

	text := fmt.Sprintf("# %s\n%s\n\n%s", item.Title, item.URL, item.Content)
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

// extractContentID extracts the ID from a URI like pagewise://content/{contentId}.
func extractContentID(uri string) string {
	const prefix = uriScheme + "content/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
