package answer

import (
	"strings"

	"github.com/poiesic/archivist/core"
)

const (
	// citationCap bounds the structured citation list, independently of
	// how many passages feed the generation context.
	citationCap = 6

	// sourcesCap bounds the rendered sources block.
	sourcesCap = 5
)

// buildCitations produces one citation per evidence passage, up to
// citationCap. Chunk identifiers live only in the structured fields;
// rendered strings carry timestamps and links instead.
func buildCitations(passages []*core.ScoredPassage) []core.Citation {
	citations := make([]core.Citation, 0, min(len(passages), citationCap))
	for _, sp := range passages {
		if len(citations) >= citationCap {
			break
		}
		p := sp.Passage

		c := core.Citation{
			TalkID:     p.TalkID,
			Title:      p.Title,
			Recorded:   p.Recorded,
			ChunkIndex: p.ChunkIndex,
		}
		if p.HasTiming() {
			c.Timecode = p.StartLabel
			if c.Timecode == "" {
				c.Timecode = core.FormatTimecode(p.StartSeconds)
			}
			c.MediaURL = core.MediaLink(p.MediaID, p.StartSeconds)
		} else if p.MediaID != "" {
			c.MediaURL = core.PlainMediaLink(p.MediaID)
		}

		citations = append(citations, c)
	}
	return citations
}

// sourceKey identifies a citation for sources-block deduplication:
// same talk plus the same timecode, link, or title collapses to one line.
func sourceKey(c core.Citation) string {
	switch {
	case c.Timecode != "":
		return c.TalkID + "|" + c.Timecode
	case c.MediaURL != "":
		return c.TalkID + "|" + c.MediaURL
	default:
		return c.TalkID + "|" + c.Title
	}
}

// renderSources builds the human-readable sources block: a deduplicated,
// order-preserving bulleted list of up to sourcesCap citations. No chunk
// markers appear here.
func renderSources(citations []core.Citation) string {
	if len(citations) == 0 {
		return ""
	}

	seen := make(map[string]bool)
	var b strings.Builder
	count := 0

	for _, c := range citations {
		if count >= sourcesCap {
			break
		}
		key := sourceKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true

		b.WriteString("- ")
		if c.Recorded != "" {
			b.WriteString(c.Recorded)
			b.WriteString(" — ")
		}
		b.WriteString(c.Title)
		if c.Timecode != "" {
			b.WriteString(" (")
			b.WriteString(c.Timecode)
			b.WriteString(")")
		}
		if c.MediaURL != "" {
			b.WriteString(" ")
			b.WriteString(c.MediaURL)
		}
		b.WriteString("\n")
		count++
	}

	return strings.TrimRight(b.String(), "\n")
}
