// Package ingestion provides the corpus build pipeline for talk passages.
//
// The Pipeline type manages the build workflow for passages, including:
//   - Validating and normalizing incoming passages
//   - Generating embeddings in concurrent batches
//   - Writing passages to storage in input order
//   - Recording corpus metadata for load-time checks
//
// Embedding batches run concurrently on a worker pool; storage writes
// happen afterwards in a single ordered pass so row ids stay dense.
package ingestion
