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


package reembed

import (
	"context"

	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/store"
)

const (
	// DefaultBatchSize is the default number of chunks to process in each batch.
	DefaultBatchSize = 100
)

// ChunkIterator iterates over a single policy's chunks in batches.
type ChunkIterator struct {
	chunkStore store.Store
	policyID   string
	batchSize  int
}

// NewChunkIterator creates a new chunk iterator over policyID's chunks.
// batchSize: number of chunks to process per batch (must be > 0).
func NewChunkIterator(chunkStore store.Store, policyID string, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ChunkIterator{chunkStore: chunkStore, policyID: policyID, batchSize: batchSize}
}

// ForEach iterates over every chunk belonging to the policy, calling
// fn for each batch. Iteration stops on the first error fn returns or
// once every chunk has been processed. Context cancellation is
// checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	chunks, err := it.chunkStore.ListPolicy(ctx, it.policyID, nil)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	for i := 0; i < len(chunks); i += it.batchSize {
		end := i + it.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if err := fn(chunks[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
