package search

import "github.com/poiesic/archivist/core"

// samplePassages is the fixed degraded-mode result returned when the
// vector index or embedding service is unavailable. The talk ids are
// deliberately synthetic so a caller inspecting results can tell them
// apart from real corpus passages; Status reports the degraded state
// explicitly.
func samplePassages() []*core.ScoredPassage {
	passages := []*core.Passage{
		{
			TalkID:       "sample-presence",
			ChunkIndex:   0,
			Title:        "Sample: Resting in Presence",
			Recorded:     "2000-01-01",
			Text:         "Notice what is already here before any effort to find it. The looking itself is the thing being looked for.",
			StartSeconds: -1,
			EndSeconds:   -1,
		},
		{
			TalkID:       "sample-inquiry",
			ChunkIndex:   0,
			Title:        "Sample: The Question Behind Questions",
			Recorded:     "2000-01-01",
			Text:         "Every sincere question eventually turns back toward the one who asks it. Stay with that turning rather than the answer.",
			StartSeconds: -1,
			EndSeconds:   -1,
		},
		{
			TalkID:       "sample-stillness",
			ChunkIndex:   0,
			Title:        "Sample: Ordinary Stillness",
			Recorded:     "2000-01-01",
			Text:         "Stillness is not the absence of sound or movement. It is the space in which both appear and dissolve.",
			StartSeconds: -1,
			EndSeconds:   -1,
		},
	}

	results := make([]*core.ScoredPassage, 0, len(passages))
	for _, p := range passages {
		results = append(results, &core.ScoredPassage{Passage: p, Score: 0})
	}
	return results
}
