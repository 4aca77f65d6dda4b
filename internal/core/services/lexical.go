package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexical scoring weights. Scores are additive and unbounded.
const (
	titleMatchWeight   = 1.0
	contentMatchWeight = 0.8
	phraseMatchWeight  = 0.6
	wordMatchWeight    = 0.3
	synonymMatchWeight = 0.2
	topicalBonus       = 0.4

	// minQueryWordLength is the length a query word must exceed to be
	// matched on its own or as part of a phrase.
	minQueryWordLength = 2
)

// synonymTable maps a query term to related terms that also count as a match.
var synonymTable = map[string][]string{
	"ai":                      {"artificial intelligence", "machine learning", "ml"},
	"artificial intelligence": {"ai", "machine learning"},
	"machine learning":        {"ml", "ai", "artificial intelligence"},
	"ml":                      {"machine learning", "ai"},
	"deep learning":           {"neural network", "neural networks"},
	"neural network":          {"deep learning"},
	"llm":                     {"large language model", "language model"},
	"javascript":              {"js", "ecmascript"},
	"js":                      {"javascript"},
	"typescript":              {"ts"},
	"python":                  {"py"},
	"database":                {"db", "datastore", "sql"},
	"db":                      {"database"},
	"api":                     {"endpoint", "interface"},
	"function":                {"method", "procedure"},
	"error":                   {"exception", "failure"},
	"bug":                     {"defect", "error"},
	"install":                 {"setup", "installation"},
	"performance":             {"speed", "latency"},
	"security":                {"authentication", "encryption"},
	"docs":                    {"documentation"},
	"documentation":           {"docs", "guide"},
}

// aiVocabulary lists terms that mark text as being about AI or ML.
var aiVocabulary = []string{
	"ai",
	"artificial intelligence",
	"machine learning",
	"ml",
	"deep learning",
	"neural network",
	"neural networks",
	"llm",
	"llms",
	"large language model",
	"nlp",
	"natural language processing",
	"embedding",
	"embeddings",
	"transformer",
	"transformers",
	"gpt",
	"computer vision",
}

// lexicalQuery is a query prepared for scoring many chunks.
type lexicalQuery struct {
	text     string   // lowercased, trimmed query
	words    []string // query words longer than minQueryWordLength
	phrases  []string // adjacent pairs of words
	synonyms []string // distinct synonyms of terms found in the query
	topical  bool     // query mentions an AI/ML term
}

func newLexicalQuery(query string) lexicalQuery {
	q := lexicalQuery{text: strings.ToLower(strings.TrimSpace(query))}
	if q.text == "" {
		return q
	}

	for _, w := range splitWords(q.text) {
		if utf8.RuneCountInString(w) > minQueryWordLength {
			q.words = append(q.words, w)
		}
	}
	for i := 0; i+1 < len(q.words); i++ {
		q.phrases = append(q.phrases, q.words[i]+" "+q.words[i+1])
	}

	seen := make(map[string]bool)
	for term, related := range synonymTable {
		if !containsTerm(q.text, term) {
			continue
		}
		for _, syn := range related {
			if !seen[syn] {
				seen[syn] = true
				q.synonyms = append(q.synonyms, syn)
			}
		}
	}

	q.topical = mentionsAI(q.text)
	return q
}

// score returns the lexical relevance of a chunk. Both arguments must
// already be lowercased.
func (q lexicalQuery) score(title, content string) float64 {
	if q.text == "" {
		return 0
	}

	var titleHits, contentHits, phraseHits, wordHits, synonymHits int
	if strings.Contains(title, q.text) {
		titleHits++
	}
	if strings.Contains(content, q.text) {
		contentHits++
	}
	for _, p := range q.phrases {
		if strings.Contains(content, p) {
			phraseHits++
		}
	}
	for _, w := range q.words {
		if strings.Contains(content, w) {
			wordHits++
		}
	}
	for _, syn := range q.synonyms {
		if containsTerm(content, syn) {
			synonymHits++
		}
	}

	score := float64(titleHits)*titleMatchWeight +
		float64(contentHits)*contentMatchWeight +
		float64(phraseHits)*phraseMatchWeight +
		float64(wordHits)*wordMatchWeight +
		float64(synonymHits)*synonymMatchWeight
	if q.topical && mentionsAI(content) {
		score += topicalBonus
	}
	return score
}

// terms returns the query words used for highlighting.
func (q lexicalQuery) terms() []string {
	if len(q.words) > 0 {
		return q.words
	}
	return splitWords(q.text)
}

func mentionsAI(text string) bool {
	for _, term := range aiVocabulary {
		if containsTerm(text, term) {
			return true
		}
	}
	return false
}

// splitWords splits text on anything that is not a letter or digit.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
}

// containsTerm reports whether term occurs in text delimited by word boundaries.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
