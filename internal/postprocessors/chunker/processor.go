// Package chunker splits page text into overlapping, sentence-aware chunks.
package chunker

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// minSegmentLength is the trimmed length a segment must exceed to be kept
// when the text spans several windows.
const minSegmentLength = 50

// sentenceCutRatio is how far into a window a sentence terminator must be
// before the window is cut there instead of at its raw boundary.
const sentenceCutRatio = 0.7

// Segment is one chunk of text with its position in the source.
type Segment struct {
	// Text is the trimmed chunk text.
	Text string

	// Start is the rune offset of the window in the source text.
	Start int

	// Size is the length of Text in characters.
	Size int

	// Overlap is the number of characters shared with the previous segment.
	Overlap int
}

// Processor splits text into chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
// An overlap at or above the chunk size is accepted; the scan then
// advances without overlap.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Chunk splits text into chunks of roughly targetSize characters that
// overlap by overlap characters.
func Chunk(text string, targetSize, overlap int) []string {
	segments := New(WithChunkSize(targetSize), WithOverlap(overlap)).Segments(text)
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = s.Text
	}
	return out
}

// Segments scans text greedily from the start and returns its chunks.
// A window that does not reach the end of the text is cut after the last
// sentence terminator when one lies beyond 70% of the window.
func (p *Processor) Segments(text string) []Segment {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	// A page that fits in one window is always answerable, however short.
	if n <= p.chunkSize {
		return []Segment{{
			Text: trimmed,
			Size: utf8.RuneCountInString(trimmed),
		}}
	}

	segments := make([]Segment, 0, n/max(p.chunkSize-p.overlap, 1)+1)
	start, prevEnd := 0, 0

	for start < n {
		end := min(start+p.chunkSize, n)
		cut := end

		if end < n {
			window := runes[start:end]
			if i := lastTerminator(window); i >= 0 && float64(i) > float64(len(window))*sentenceCutRatio {
				cut = start + i + 1
			}
		}

		seg := strings.TrimSpace(string(runes[start:cut]))
		if size := utf8.RuneCountInString(seg); size > minSegmentLength {
			overlap := 0
			if len(segments) > 0 && prevEnd > start {
				overlap = prevEnd - start
			}
			segments = append(segments, Segment{
				Text:    seg,
				Start:   start,
				Size:    size,
				Overlap: overlap,
			})
			prevEnd = cut
		}

		if cut >= n {
			break
		}

		next := cut - p.overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return segments
}

// Process chunks the content of item into domain chunks without embeddings.
// Chunk IDs are derived from the item ID and the chunk index.
func (p *Processor) Process(item *domain.ContentItem, now time.Time) []domain.Chunk {
	segments := p.Segments(item.Content)
	chunks := make([]domain.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(item.ID, i),
			ContentID:  item.ID,
			URL:        item.URL,
			Title:      item.Title,
			Content:    seg.Text,
			ChunkIndex: i,
			Metadata: domain.ChunkMetadata{
				Size:      seg.Size,
				Overlap:   seg.Overlap,
				CreatedAt: now,
			},
		}
	}
	return chunks
}

// lastTerminator returns the index of the last '.', '!' or '?' in window, or -1.
func lastTerminator(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}
