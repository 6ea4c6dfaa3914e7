package badger

import (
	"encoding/binary"

	"github.com/poiesic/archivist/core"
)

// Key prefixes for different data types
const (
	passageRowPrefix = "pasrow"
	passageRefPrefix = "pasref"
	corpusInfoKey    = "pasmeta"
)

// makePassageRowKey generates a key for a passage by row id.
// Format: prefix:row (BigEndian so lexicographic order matches row order)
func makePassageRowKey(row uint64) []byte {
	prefix := passageRowPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], row)
	return buf
}

// makePassageRefKey generates a key for the (talk, chunk) reference index.
// Format: prefix:talk:idx
func makePassageRefKey(ref core.Ref) []byte {
	return []byte(passageRefPrefix + ":" + ref.String())
}

// makeCorpusInfoKey generates the key for the corpus metadata record.
func makeCorpusInfoKey() []byte {
	return []byte(corpusInfoKey)
}
