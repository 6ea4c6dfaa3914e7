package answer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/archivist/core"
	"github.com/stretchr/testify/assert"
)

func TestTrimToSentence(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "Keep me whole.", trimToSentence("Keep me whole.", 100))
	})

	t.Run("cuts at sentence boundary", func(t *testing.T) {
		text := "First sentence here. Second sentence continues on for a while."
		got := trimToSentence(text, 40)
		assert.Equal(t, "First sentence here.", got)
	})

	t.Run("handles closing quote", func(t *testing.T) {
		text := `He said "enough." Then the room settled into quiet for a long time afterward.`
		got := trimToSentence(text, 30)
		assert.Equal(t, `He said "enough."`, got)
	})

	t.Run("falls back to word boundary with ellipsis", func(t *testing.T) {
		text := "a stream of words without any terminating punctuation at all flowing onward"
		got := trimToSentence(text, 30)
		assert.True(t, strings.HasSuffix(got, "…"), "expected ellipsis, got %q", got)
		assert.LessOrEqual(t, len(got), 33)
		assert.NotContains(t, got[:len(got)-3], "  ")
	})

	t.Run("never splits a multi-byte rune", func(t *testing.T) {
		text := strings.Repeat("слово речи без знаков препинания ", 10)
		for limit := 20; limit < 40; limit++ {
			got := trimToSentence(text, limit)
			assert.True(t, utf8.ValidString(got), "limit %d produced invalid UTF-8: %q", limit, got)
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "tight", trimToSentence("   tight   ", 100))
	})
}

func TestFormatContext(t *testing.T) {
	passages := []*core.ScoredPassage{
		{Passage: &core.Passage{
			TalkID:     "talk-a",
			ChunkIndex: 4,
			Title:      "The Open Question",
			Recorded:   "2018-03-11",
			Text:       "A short passage.",
		}},
		{Passage: &core.Passage{
			TalkID:     "talk-b",
			ChunkIndex: 0,
			Title:      "Untimed Talk",
			Text:       "Another passage.",
		}},
	}

	ctx := formatContext(passages, 750)

	assert.Contains(t, ctx, "[2018-03-11, The Open Question, part 5]")
	assert.Contains(t, ctx, "A short passage.")
	// Missing date renders as UNKNOWN rather than an empty label slot
	assert.Contains(t, ctx, "[UNKNOWN, Untimed Talk, part 1]")
	assert.Equal(t, 2, strings.Count(ctx, "\n\n")+1, "blocks joined by blank lines")
}
