package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a chunk store is not provided.
	ErrStoreRequired = errors.New("chunk store required")

	// ErrProviderRequired is returned when an airag provider is not provided.
	ErrProviderRequired = errors.New("airag provider required")

	// ErrPolicyIDRequired is returned when Ingest is called without a
	// policy_id.
	ErrPolicyIDRequired = errors.New("policy_id required")

	// ErrEmbeddingMismatch is returned when the embedder returns a
	// different number of vectors than texts submitted. This indicates
	// a provider bug, not a retriable condition.
	ErrEmbeddingMismatch = errors.New("embedding result count mismatch")
)
