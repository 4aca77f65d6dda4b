// Package web extracts readable text from HTML pages over HTTP.
package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "pagewise/1.0"

	// MaxReadSize caps the response body (5MB).
	MaxReadSize = int64(5 * 1024 * 1024)
)

const (
	// blockSelector lists the elements whose text becomes paragraphs.
	blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td"

	// noiseSelector lists elements removed before extraction.
	noiseSelector = "script, style, noscript, nav, header, footer, aside, form, svg, iframe"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Config holds configuration for the web extractor.
type Config struct {
	// Timeout bounds the whole request (default: 30s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Extractor fetches pages and extracts title and text.
type Extractor struct {
	client    *http.Client
	userAgent string
}

// New creates a web extractor.
func New(cfg Config) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Extractor{client: client, userAgent: cfg.UserAgent}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string {
	return "web"
}

// Extract fetches url and returns its readable content. Every failure is a
// *domain.FetchError.
func (e *Extractor) Extract(ctx context.Context, url string) (*driven.Extraction, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("%w: URL must start with http:// or https://", domain.ErrInvalidInput)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html, text/plain;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxReadSize))
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	var out *driven.Extraction
	if isHTML(resp.Header.Get("Content-Type"), body) {
		out, err = ParseHTML(body)
		if err != nil {
			return nil, &domain.FetchError{URL: url, Err: err}
		}
	} else {
		out = &driven.Extraction{Text: normaliseSpace(string(body))}
	}

	if strings.TrimSpace(out.Text) == "" {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("no readable text")}
	}
	if out.Title == "" {
		out.Title = titleFromText(out.Text, url)
	}
	return out, nil
}

// ParseHTML extracts the title and readable text of an HTML document.
// The title comes from <title>, then the first <h1>. Text comes from
// <article>, then <main>, then <body>, with navigation and scripts removed.
func ParseHTML(body []byte) (*driven.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find(noiseSelector).Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks (p inside li, say) are collected by their outermost match.
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})

	text := strings.Join(parts, "\n\n")
	if text == "" {
		text = root.Text()
	}

	return &driven.Extraction{
		Title: normaliseSpace(title),
		Text:  normaliseSpace(text),
	}, nil
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "html") {
		return true
	}
	if contentType == "" {
		return strings.Contains(http.DetectContentType(body), "html")
	}
	return false
}

func normaliseSpace(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// titleFromText uses the first line of text, or the URL when it is too long.
func titleFromText(text, url string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if line == "" || len([]rune(line)) > 120 {
		return url
	}
	return line
}
