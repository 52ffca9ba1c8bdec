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


package badger

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/store"
)

// ChunkStore implements store.Store for BadgerDB. Similarity search is
// an exact brute-force cosine scan restricted to the policy's
// secondary index prefix, satisfying the recall>=0.9 requirement
// trivially (recall=1.0) while keeping the scan linear in one
// policy's chunk count rather than the whole store.
type ChunkStore struct {
	backend *Backend
	idSeq   *badgerdb.Sequence
}

var _ store.Store = (*ChunkStore)(nil)

// NewChunkStore creates a new ChunkStore over backend.
func NewChunkStore(backend *Backend) (*ChunkStore, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}
	return &ChunkStore{backend: backend, idSeq: idSeq}, nil
}

// Close releases the id sequence.
func (s *ChunkStore) Close() error {
	return s.idSeq.Release()
}

// PutBatch inserts chunks for policyID atomically, assigning ids and
// returning them in input order.
func (s *ChunkStore) PutBatch(ctx context.Context, policyID string, chunks []*core.Chunk) ([]core.ID, error) {
	ids := make([]core.ID, len(chunks))

	err := s.backend.WithTx(func(tx *badgerdb.Txn) error {
		for i, c := range chunks {
			if c.PolicyID != policyID {
				panic(fmt.Errorf("%w: chunk declares policy %q, batch is for %q", store.ErrPolicyIsolationViolation, c.PolicyID, policyID))
			}

			nextID, err := s.idSeq.Next()
			if err != nil {
				return err
			}
			if nextID == 0 {
				// BadgerDB sequences may return 0 on first use.
				nextID, err = s.idSeq.Next()
				if err != nil {
					return err
				}
			}
			c.Id = core.ID(nextID)
			if c.CreatedAt.IsZero() {
				c.CreatedAt = time.Now().UTC()
			}

			value, err := store.MarshalChunk(c)
			if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(c.Id), value); err != nil {
				return err
			}

			indexKey := makePolicyIndexKey(policyID, c.Position, c.Id)
			if err := tx.Set(indexKey, store.MarshalIndexEntry(c.Id, c.Kind)); err != nil {
				return err
			}

			ids[i] = c.Id
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeletePolicy removes every chunk belonging to policyID, atomically.
func (s *ChunkStore) DeletePolicy(ctx context.Context, policyID string) error {
	return s.backend.WithTx(func(tx *badgerdb.Txn) error {
		prefix := makePolicyIndexPrefix(policyID)
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)

		var indexKeys [][]byte
		var chunkIDs []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			indexKeys = append(indexKeys, append([]byte{}, iter.Item().Key()...))
			err := iter.Item().Value(func(val []byte) error {
				id, _, err := store.UnmarshalIndexEntry(val)
				if err != nil {
					return err
				}
				chunkIDs = append(chunkIDs, id)
				return nil
			})
			if err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		for _, key := range indexKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, id := range chunkIDs {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Fetch retrieves a single chunk by id.
func (s *ChunkStore) Fetch(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := s.backend.WithTx(func(tx *badgerdb.Txn) error {
		item, err := tx.Get(makeChunkKey(id))
		if err == badgerdb.ErrKeyNotFound {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = store.UnmarshalChunk(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of chunks for policyID, optionally
// restricted to kindFilter, without reading full chunk records.
func (s *ChunkStore) Count(ctx context.Context, policyID string, kindFilter core.KindSet) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = makePolicyIndexPrefix(policyID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				_, kind, err := store.UnmarshalIndexEntry(val)
				if err != nil {
					return err
				}
				if len(kindFilter) == 0 || kindFilter.Contains(kind) {
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return count, err
}

// Similar returns the top-k chunks for policyID ranked by cosine
// similarity to query, mapped into [0,1].
func (s *ChunkStore) Similar(ctx context.Context, policyID string, query []float32, k int, kindFilter core.KindSet) ([]core.ScoredChunk, error) {
	var candidateIDs []core.ID

	err := s.backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = makePolicyIndexPrefix(policyID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, kind, err := store.UnmarshalIndexEntry(val)
				if err != nil {
					return err
				}
				if len(kindFilter) == 0 || kindFilter.Contains(kind) {
					candidateIDs = append(candidateIDs, id)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	var scored []core.ScoredChunk
	err = s.backend.WithTx(func(tx *badgerdb.Txn) error {
		for _, id := range candidateIDs {
			item, err := tx.Get(makeChunkKey(id))
			if err == badgerdb.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var chunk *core.Chunk
			if err := item.Value(func(val []byte) error {
				var err error
				chunk, err = store.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			if len(chunk.Embedding) == 0 {
				continue
			}
			if len(chunk.Embedding) != len(query) {
				return fmt.Errorf("%w: chunk %d has %d dims, query has %d", store.ErrDimensionMismatch, chunk.Id, len(chunk.Embedding), len(query))
			}
			score := cosineTo01(query, chunk.Embedding)
			scored = append(scored, core.ScoredChunk{Chunk: chunk, Score: score})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(scored, func(a, b core.ScoredChunk) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.Chunk.Position < b.Chunk.Position:
			return -1
		case a.Chunk.Position > b.Chunk.Position:
			return 1
		default:
			return 0
		}
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// ListPolicy returns every chunk for policyID, optionally restricted
// to kindFilter, ordered by Position ascending (the secondary index
// is keyed by position, so iteration order falls out for free).
func (s *ChunkStore) ListPolicy(ctx context.Context, policyID string, kindFilter core.KindSet) ([]*core.Chunk, error) {
	var candidateIDs []core.ID

	err := s.backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = makePolicyIndexPrefix(policyID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, kind, err := store.UnmarshalIndexEntry(val)
				if err != nil {
					return err
				}
				if len(kindFilter) == 0 || kindFilter.Contains(kind) {
					candidateIDs = append(candidateIDs, id)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.Chunk, 0, len(candidateIDs))
	err = s.backend.WithTx(func(tx *badgerdb.Txn) error {
		for _, id := range candidateIDs {
			item, err := tx.Get(makeChunkKey(id))
			if err == badgerdb.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var chunk *core.Chunk
			if err := item.Value(func(val []byte) error {
				var err error
				chunk, err = store.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// UpdateEmbeddings overwrites the Embedding field of already-stored
// chunks in place. The secondary index is untouched since Kind and
// Position do not change.
func (s *ChunkStore) UpdateEmbeddings(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return s.backend.WithTx(func(tx *badgerdb.Txn) error {
		for _, c := range chunks {
			item, err := tx.Get(makeChunkKey(c.Id))
			if err == badgerdb.ErrKeyNotFound {
				return store.ErrNotFound
			}
			if err != nil {
				return err
			}
			var existing *core.Chunk
			if err := item.Value(func(val []byte) error {
				var err error
				existing, err = store.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			existing.Embedding = c.Embedding

			value, err := store.MarshalChunk(existing)
			if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(c.Id), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// cosineTo01 computes cosine similarity between a and b and maps it
// from [-1,1] into [0,1] via (1+cos)/2.
func cosineTo01(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		fa, fb := float64(a[i]), float64(b[i])
		dot += fa * fb
		normA += fa * fa
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0.5
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return float32((1 + cos) / 2)
}
