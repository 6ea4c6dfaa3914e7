package archivist

import "errors"

// ErrCorpusInconsistent is returned by Open when the stored corpus
// metadata disagrees with the passages actually on disk.
var ErrCorpusInconsistent = errors.New("corpus metadata does not match stored passages")
