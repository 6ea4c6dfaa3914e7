package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPassage() *Passage {
	return &Passage{
		TalkID:       "2019-02-17-awakening",
		ChunkIndex:   4,
		Title:        "Awakening to the Future Human",
		Recorded:     "2019-02-17",
		Text:         "Consciousness becoming self-luminous through collective evolution.",
		StartSeconds: -1,
		EndSeconds:   -1,
	}
}

func TestValidatePassage(t *testing.T) {
	t.Run("valid passage", func(t *testing.T) {
		assert.NoError(t, ValidatePassage(validPassage()))
	})

	t.Run("nil passage", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePassage(nil), ErrInvalidPassage)
	})

	t.Run("empty talk id", func(t *testing.T) {
		p := validPassage()
		p.TalkID = ""
		err := ValidatePassage(p)
		assert.ErrorIs(t, err, ErrInvalidPassage)
		assert.ErrorIs(t, err, ErrEmptyTalkID)
	})

	t.Run("negative chunk index", func(t *testing.T) {
		p := validPassage()
		p.ChunkIndex = -1
		assert.ErrorIs(t, ValidatePassage(p), ErrNegativeChunkIndex)
	})

	t.Run("empty text", func(t *testing.T) {
		p := validPassage()
		p.Text = ""
		assert.ErrorIs(t, ValidatePassage(p), ErrEmptyText)
	})

	t.Run("end before start", func(t *testing.T) {
		p := validPassage()
		p.MediaID = "vid"
		p.StartSeconds = 90
		p.EndSeconds = 30
		assert.ErrorIs(t, ValidatePassage(p), ErrInvalidTiming)
	})

	t.Run("unknown end is allowed", func(t *testing.T) {
		p := validPassage()
		p.MediaID = "vid"
		p.StartSeconds = 90
		p.EndSeconds = -1
		assert.NoError(t, ValidatePassage(p))
	})
}

func TestNormalizeTiming(t *testing.T) {
	t.Run("no media clears timing", func(t *testing.T) {
		p := validPassage()
		p.StartSeconds = 42
		p.StartLabel = "00:00:42"
		require.NoError(t, p.NormalizeTiming())
		assert.Equal(t, float64(-1), p.StartSeconds)
		assert.Empty(t, p.StartLabel)
	})

	t.Run("seconds derive labels", func(t *testing.T) {
		p := validPassage()
		p.MediaID = "vid"
		p.StartSeconds = 748.7
		p.EndSeconds = 810
		require.NoError(t, p.NormalizeTiming())
		assert.Equal(t, "00:12:28", p.StartLabel)
		assert.Equal(t, "00:13:30", p.EndLabel)
	})

	t.Run("labels derive seconds", func(t *testing.T) {
		p := validPassage()
		p.MediaID = "vid"
		p.StartSeconds = -1
		p.StartLabel = "00:12:28"
		require.NoError(t, p.NormalizeTiming())
		assert.Equal(t, float64(748), p.StartSeconds)
	})

	t.Run("malformed label is an error", func(t *testing.T) {
		p := validPassage()
		p.MediaID = "vid"
		p.StartSeconds = -1
		p.StartLabel = "bogus"
		assert.ErrorIs(t, p.NormalizeTiming(), ErrMalformedTimecode)
	})

	t.Run("absent timing stays absent", func(t *testing.T) {
		p := validPassage()
		p.MediaID = "vid"
		p.StartSeconds = -1
		p.EndSeconds = -1
		require.NoError(t, p.NormalizeTiming())
		assert.Equal(t, float64(-1), p.StartSeconds)
		assert.Empty(t, p.StartLabel)
	})
}
