// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package store

import (
	"context"

	"github.com/poiesic/guardrail/core"
)

// Store provides the chunk persistence and retrieval operations the
// guardrail depends on. Implementations must be thread-safe for
// concurrent use and must enforce policy isolation as a hard filter:
// no operation may return or delete a chunk belonging to a different
// policy_id than the one requested.
type Store interface {
	// PutBatch inserts chunks for a policy atomically, assigning ids
	// and returning them in input order. Partial inserts on failure
	// are not allowed.
	PutBatch(ctx context.Context, policyID string, chunks []*core.Chunk) ([]core.ID, error)

	// DeletePolicy removes every chunk belonging to policyID, atomically.
	DeletePolicy(ctx context.Context, policyID string) error

	// Similar returns the top-k chunks for policyID ranked by cosine
	// similarity to query, mapped into [0,1] via (1+cos)/2. kindFilter,
	// when non-empty, restricts candidates to the given kinds before
	// ranking. Ties break by Position ascending.
	Similar(ctx context.Context, policyID string, query []float32, k int, kindFilter core.KindSet) ([]core.ScoredChunk, error)

	// Fetch retrieves a single chunk by id. Returns ErrNotFound if no
	// chunk with that id exists.
	Fetch(ctx context.Context, id core.ID) (*core.Chunk, error)

	// Count returns the number of chunks for policyID, optionally
	// restricted to kindFilter.
	Count(ctx context.Context, policyID string, kindFilter core.KindSet) (int, error)

	// ListPolicy returns every chunk for policyID, optionally restricted
	// to kindFilter, ordered by Position ascending. Used by operations
	// that must visit a whole policy's chunk set, such as reembedding
	// after an embedding model change.
	ListPolicy(ctx context.Context, policyID string, kindFilter core.KindSet) ([]*core.Chunk, error)

	// UpdateEmbeddings overwrites the Embedding field of already-stored
	// chunks in place, keyed by Id. It is atomic: either every chunk is
	// updated or none are. Every id must already exist.
	UpdateEmbeddings(ctx context.Context, chunks []*core.Chunk) error

	// Close releases resources held by the store.
	Close() error
}
