package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexicalQuery_Score(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		title   string
		content string
		want    float64
	}{
		{
			name:    "title and content match",
			query:   "React",
			title:   "react docs",
			content: "react is a javascript library. it uses components.",
			want:    1.0 + 0.8 + 0.3,
		},
		{
			name:    "content match only",
			query:   "library",
			title:   "react docs",
			content: "react is a javascript library.",
			want:    0.8 + 0.3,
		},
		{
			name:    "phrases words and topical bonus",
			query:   "machine learning models",
			title:   "",
			content: "machine learning models learn from data.",
			want:    0.8 + 2*0.6 + 3*0.3 + 0.4,
		},
		{
			name:    "partial word match",
			query:   "python scripting tutorial",
			title:   "",
			content: "python is great for scripting.",
			want:    2 * 0.3,
		},
		{
			name:    "synonym and topical bonus",
			query:   "ai",
			title:   "",
			content: "artificial intelligence is a broad field.",
			want:    0.2 + 0.4,
		},
		{
			name:    "no match",
			query:   "python",
			title:   "react docs",
			content: "react is a javascript library. it uses components.",
			want:    0,
		},
		{
			name:    "blank query",
			query:   "   ",
			title:   "anything",
			content: "anything at all",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newLexicalQuery(tt.query)
			assert.InDelta(t, tt.want, q.score(tt.title, tt.content), 1e-9)
		})
	}
}

func TestLexicalQuery_ShortWordsIgnored(t *testing.T) {
	q := newLexicalQuery("go is ok")

	assert.Empty(t, q.words)
	assert.Empty(t, q.phrases)
	assert.Equal(t, []string{"go", "is", "ok"}, q.terms())
}

func TestLexicalQuery_Phrases(t *testing.T) {
	q := newLexicalQuery("how do react hooks work")

	assert.Equal(t, []string{"how", "react", "hooks", "work"}, q.words)
	assert.Equal(t, []string{"how react", "react hooks", "hooks work"}, q.phrases)
}

func TestLexicalQuery_SynonymsAreDistinct(t *testing.T) {
	q := newLexicalQuery("ai and machine learning")

	seen := make(map[string]bool)
	for _, s := range q.synonyms {
		assert.False(t, seen[s], "duplicate synonym %q", s)
		seen[s] = true
	}
	assert.True(t, seen["ml"])
	assert.True(t, seen["artificial intelligence"])
	assert.True(t, q.topical)
}

func TestContainsTerm(t *testing.T) {
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"ml models", "ml", true},
		{"use ml.", "ml", true},
		{"html parser", "ml", false},
		{"xml and ml", "ml", true},
		{"deep learning rocks", "deep learning", true},
		{"deep learnings", "deep learning", false},
		{"café ai", "ai", true},
		{"", "ai", false},
		{"ai", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, containsTerm(tt.text, tt.term))
		})
	}
}

func TestMentionsAI(t *testing.T) {
	assert.True(t, mentionsAI("training neural networks"))
	assert.True(t, mentionsAI("an llm answered"))
	assert.False(t, mentionsAI("email and html"))
}
