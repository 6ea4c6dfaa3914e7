// Package vecindex provides the in-memory vector index over the passage corpus.
//
// The index is rebuilt from the passage store at startup rather than
// persisted separately. This keeps the index and store describing the
// same snapshot: a passage that cannot be indexed (missing vector,
// wrong dimension) surfaces as a build error instead of a silently
// misaligned search space.
//
// Vectors are expected to be L2-normalized before insertion so that the
// dot-product metric equals cosine similarity. Use Normalize for this.
package vecindex
