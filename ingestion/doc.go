// Package ingestion turns a policy document into stored, embedded,
// classified chunks.
//
// The Pipeline runs a document through, in order: extraction,
// chunking and classification, embedding, and atomic storage.
// Embedding is the only stage fanned out across a worker pool, since
// it is the only stage whose per-item cost dominates and whose items
// are independent; chunking and classification run sequentially
// because the chunker carries section-heading state across blocks.
//
// Ingestion for a given policy is serialized by the caller, not by
// this package: Pipeline.Ingest assumes it is the only ingestion in
// flight for the policy_id it is given.
package ingestion
