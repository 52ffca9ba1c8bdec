// Package reembed reembeds a policy's stored chunks after the
// embedding model or dimension changes.
//
// Chunk text is immutable once ingested; only the vector needs
// regenerating. This package batches the store's chunks for one
// policy, re-runs the embedder over their text, normalizes the
// resulting vectors, and writes them back in place, with progress
// reporting, retry with exponential backoff, and context cancellation
// throughout.
package reembed
