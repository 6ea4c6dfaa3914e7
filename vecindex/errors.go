package vecindex

import "errors"

var (
	// ErrMissingVector indicates a stored passage without an embedding vector.
	ErrMissingVector = errors.New("passage has no embedding vector")

	// ErrDimensionMismatch indicates a vector whose dimension disagrees with the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyQuery indicates a search with an empty query vector.
	ErrEmptyQuery = errors.New("empty query vector")
)
