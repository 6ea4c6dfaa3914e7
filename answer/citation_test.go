package answer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/archivist/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(p *core.Passage) *core.ScoredPassage {
	return &core.ScoredPassage{Passage: p, Score: 0.9}
}

func timedPassage(talk string, chunk int, start float64) *core.Passage {
	p := &core.Passage{
		TalkID:       talk,
		ChunkIndex:   chunk,
		Title:        "Talk " + talk,
		Recorded:     "2019-05-04",
		Text:         "Some passage text.",
		MediaID:      "vid-" + talk,
		StartSeconds: start,
		EndSeconds:   start + 60,
	}
	p.StartLabel = core.FormatTimecode(start)
	return p
}

func untimedPassage(talk string, chunk int) *core.Passage {
	return &core.Passage{
		TalkID:       talk,
		ChunkIndex:   chunk,
		Title:        "Talk " + talk,
		Recorded:     "2019-05-04",
		Text:         "Some passage text.",
		StartSeconds: -1,
		EndSeconds:   -1,
	}
}

func TestBuildCitations(t *testing.T) {
	t.Run("timed passage gets timecode and deep link", func(t *testing.T) {
		cites := buildCitations([]*core.ScoredPassage{scored(timedPassage("a", 3, 748))})
		require.Len(t, cites, 1)

		c := cites[0]
		assert.Equal(t, "a", c.TalkID)
		assert.Equal(t, 3, c.ChunkIndex)
		assert.Equal(t, "00:12:28", c.Timecode)
		assert.Equal(t, "https://youtu.be/vid-a?t=748", c.MediaURL)
	})

	t.Run("untimed passage with media gets plain link", func(t *testing.T) {
		p := untimedPassage("b", 0)
		p.MediaID = "vid-b"
		cites := buildCitations([]*core.ScoredPassage{scored(p)})
		require.Len(t, cites, 1)

		assert.Empty(t, cites[0].Timecode)
		assert.Equal(t, "https://youtu.be/vid-b", cites[0].MediaURL)
	})

	t.Run("passage without media gets no link", func(t *testing.T) {
		cites := buildCitations([]*core.ScoredPassage{scored(untimedPassage("c", 0))})
		require.Len(t, cites, 1)
		assert.Empty(t, cites[0].Timecode)
		assert.Empty(t, cites[0].MediaURL)
	})

	t.Run("caps at citation limit", func(t *testing.T) {
		var passages []*core.ScoredPassage
		for i := 0; i < citationCap+4; i++ {
			passages = append(passages, scored(untimedPassage(fmt.Sprintf("talk-%d", i), 0)))
		}
		cites := buildCitations(passages)
		assert.Len(t, cites, citationCap)
	})
}

func TestRenderSources(t *testing.T) {
	t.Run("empty citations render empty block", func(t *testing.T) {
		assert.Empty(t, renderSources(nil))
	})

	t.Run("renders date title timecode and link", func(t *testing.T) {
		cites := buildCitations([]*core.ScoredPassage{scored(timedPassage("a", 2, 90))})
		block := renderSources(cites)

		assert.Contains(t, block, "- 2019-05-04 — Talk a (00:01:30) https://youtu.be/vid-a?t=90")
	})

	t.Run("no chunk markers in human-facing text", func(t *testing.T) {
		cites := buildCitations([]*core.ScoredPassage{
			scored(untimedPassage("a", 7)),
			scored(timedPassage("b", 9, 10)),
		})
		block := renderSources(cites)

		assert.NotContains(t, block, "chunk")
		assert.NotContains(t, block, ":7")
		assert.NotContains(t, block, "part 8")
	})

	t.Run("dedups by talk and time", func(t *testing.T) {
		cites := buildCitations([]*core.ScoredPassage{
			scored(timedPassage("a", 0, 90)),
			scored(timedPassage("a", 1, 90)), // same talk, same timecode
			scored(timedPassage("a", 2, 200)),
		})
		block := renderSources(cites)

		lines := strings.Split(block, "\n")
		assert.Len(t, lines, 2)
	})

	t.Run("dedups untimed by title", func(t *testing.T) {
		cites := buildCitations([]*core.ScoredPassage{
			scored(untimedPassage("a", 0)),
			scored(untimedPassage("a", 3)),
		})
		block := renderSources(cites)
		assert.Len(t, strings.Split(block, "\n"), 1)
	})

	t.Run("caps rendered lines", func(t *testing.T) {
		var passages []*core.ScoredPassage
		for i := 0; i < citationCap; i++ {
			passages = append(passages, scored(untimedPassage(fmt.Sprintf("talk-%d", i), 0)))
		}
		block := renderSources(buildCitations(passages))
		assert.Len(t, strings.Split(block, "\n"), sourcesCap)
	})
}
