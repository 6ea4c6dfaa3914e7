package answer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/archivist/core"
)

// trimToSentence shortens text to at most limit bytes, preferring to
// cut at a sentence boundary. Scanning backward from the cutoff, the
// first sentence-terminating punctuation mark (optionally followed by a
// closing quote) that precedes whitespace wins; failing that, the cut
// falls on the last word boundary and an ellipsis marker is appended.
// The cutoff never splits a multi-byte rune.
func trimToSentence(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}

	// Back the cutoff up onto a rune boundary.
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	cut := text[:limit]
	for i := len(cut) - 1; i > 0; i-- {
		if !isSpace(cut[i]) {
			continue
		}
		j := i - 1
		if cut[j] == '"' || cut[j] == '\'' {
			if j == 0 {
				continue
			}
			j--
		}
		if cut[j] == '.' || cut[j] == '!' || cut[j] == '?' {
			return strings.TrimSpace(cut[:i])
		}
	}

	// No sentence boundary in budget: cut at the last word instead.
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;—") + "…"
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// formatContext renders the selected passages as labeled blocks for the
// generation prompt. The part marker appears only here, never in
// human-facing output.
func formatContext(passages []*core.ScoredPassage, snippetChars int) string {
	blocks := make([]string, 0, len(passages))
	for _, sp := range passages {
		p := sp.Passage
		date := p.Recorded
		if date == "" {
			date = "UNKNOWN"
		}
		head := fmt.Sprintf("[%s, %s, part %d]", date, p.Title, p.ChunkIndex+1)
		blocks = append(blocks, head+"\n"+trimToSentence(p.Text, snippetChars))
	}
	return strings.Join(blocks, "\n\n")
}
