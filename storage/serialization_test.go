package storage

import (
	"testing"

	"github.com/poiesic/archivist/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRowID(t *testing.T) {
	tests := []struct {
		name string
		row  uint64
	}{
		{"zero row", 0},
		{"small row", 42},
		{"large row", 18446744073709551615}, // max uint64
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Marshal
			data := MarshalRowID(tt.row)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			// Unmarshal
			decoded, err := UnmarshalRowID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.row, decoded)
		})
	}
}

func TestUnmarshalRowID_Invalid(t *testing.T) {
	_, err := UnmarshalRowID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalPassage(t *testing.T) {
	tests := []struct {
		name    string
		passage *core.Passage
	}{
		{
			name: "minimal passage",
			passage: &core.Passage{
				TalkID:       "2016-10-09-presence",
				ChunkIndex:   0,
				Text:         "What is present before thought arises?",
				StartSeconds: -1,
				EndSeconds:   -1,
			},
		},
		{
			name: "passage with timing and vector",
			passage: &core.Passage{
				RowID:         12,
				TalkID:        "2016-10-09-presence",
				ChunkIndex:    3,
				Title:         "Resting as Presence",
				Recorded:      "2016-10-09",
				Text:          "The noticing itself is already the answer.",
				TokenEstimate: 10,
				Checksum:      core.ChecksumText("The noticing itself is already the answer."),
				Vector:        []float32{0.1, 0.2, 0.3, 0.4},
				MediaID:       "abc123xyz",
				StartSeconds:  312,
				EndSeconds:    377,
				StartLabel:    "00:05:12",
				EndLabel:      "00:06:17",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalPassage(tt.passage)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalPassage(data)
			require.NoError(t, err)
			assert.Equal(t, tt.passage, decoded)
		})
	}
}

func TestUnmarshalPassage_Invalid(t *testing.T) {
	p := &core.Passage{TalkID: "talk", Text: "text", StartSeconds: -1, EndSeconds: -1}
	data := MarshalPassage(p)

	_, err := UnmarshalPassage(data[:3])
	assert.Error(t, err)
}

func TestMarshalUnmarshalCorpusInfo(t *testing.T) {
	info := &core.CorpusInfo{
		Rows:           412,
		Dimension:      384,
		EmbeddingModel: "nomic-embed-text",
		BuiltAt:        "2026-08-01T09:30:00Z",
	}

	data := MarshalCorpusInfo(info)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCorpusInfo(data)
	require.NoError(t, err)
	assert.Equal(t, info, decoded)
}
