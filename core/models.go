package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Passage is one indexed, citable unit of transcript text. Passages are
// normalized at the storage boundary: optional fields carry explicit
// absence values (empty string, -1 for timing offsets) so downstream code
// never probes for field presence.
type Passage struct {
	RowID         uint64
	TalkID        string
	ChunkIndex    int
	Title         string
	Recorded      string // ISO date of the recording, empty if unknown
	Text          string
	TokenEstimate int
	Checksum      string

	// Vector is the unit-normalized embedding of Text. It is persisted
	// alongside the record; the in-memory vector index is rebuilt from it
	// at load time so row i always describes one and the same passage in
	// both structures.
	Vector []float32

	// Timing fields are present only when the passage was time-aligned to
	// source media. MediaID == "" means no alignment; seconds are -1 when
	// unknown.
	MediaID      string
	StartSeconds float64
	EndSeconds   float64
	StartLabel   string // HH:MM:SS, derived from StartSeconds (or vice versa)
	EndLabel     string
}

// Ref identifies a passage by its position within a talk.
// (TalkID, ChunkIndex) is unique across the corpus.
type Ref struct {
	TalkID     string
	ChunkIndex int
}

// Ref returns the passage's talk-relative identifier.
func (p *Passage) Ref() Ref {
	return Ref{TalkID: p.TalkID, ChunkIndex: p.ChunkIndex}
}

// HasTiming reports whether the passage was time-aligned to source media.
func (p *Passage) HasTiming() bool {
	return p.MediaID != "" && p.StartSeconds >= 0
}

// String renders the ref in the canonical "talk_id:chunk_index" form used
// for explicit lookups.
func (r Ref) String() string {
	return r.TalkID + ":" + strconv.Itoa(r.ChunkIndex)
}

// ParseRef parses a "talk_id:chunk_index" string. The chunk index is the
// part after the last colon, so talk ids containing colons still parse.
func ParseRef(s string) (Ref, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, s)
	}
	idx, err := strconv.Atoi(s[i+1:])
	if err != nil || idx < 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, s)
	}
	return Ref{TalkID: s[:i], ChunkIndex: idx}, nil
}

// ScoredPassage is a passage with its retrieval similarity score.
// Scores are inner products of unit vectors; degraded fallback results
// carry a zero score.
type ScoredPassage struct {
	Passage *Passage
	Score   float32
}

// AnswerMode tags how an answer was produced.
type AnswerMode int

const (
	// AnswerModeEmpty marks the fixed "no relevant passages" response.
	AnswerModeEmpty AnswerMode = iota + 1
	// AnswerModeGenerated marks an answer written by the language model.
	AnswerModeGenerated
	// AnswerModeExtractive marks the deterministic extractive fallback.
	AnswerModeExtractive
)

// Citation is a structured reference to a passage used as evidence.
// ChunkIndex lives only here; rendered strings shown to an end user never
// contain it.
type Citation struct {
	TalkID     string
	Title      string
	Recorded   string
	ChunkIndex int
	Timecode   string // HH:MM:SS into the source media, empty if untimed
	MediaURL   string // time-anchored deep link when timed, plain link when not, empty without media
}

// Answer is the result of synthesis: prose text, the citations backing it,
// and a human-readable sources block.
type Answer struct {
	Text      string
	Mode      AnswerMode
	Citations []Citation
	Sources   string
}

// Status reports the runtime health of the corpus resources.
type Status struct {
	IndexLoaded bool
	IndexSize   int
	StoreLoaded bool
	StoreRows   int
}

// CorpusInfo describes a corpus build. It is written once by the ingestion
// pipeline and checked at load time.
type CorpusInfo struct {
	Rows           int
	Dimension      int
	EmbeddingModel string
	BuiltAt        string // ISO timestamp
}
