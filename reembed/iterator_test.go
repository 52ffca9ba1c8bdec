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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/store"
	"github.com/poiesic/guardrail/store/badger"
)

func setupTestStore(t *testing.T) (store.Store, func()) {
	t.Helper()
	chunkStore, backend, err := badger.NewMemoryStore()
	require.NoError(t, err)

	cleanup := func() {
		chunkStore.Close()
		backend.Close()
	}
	return chunkStore, cleanup
}

func seedChunks(t *testing.T, s store.Store, policyID string, n int) []*core.Chunk {
	t.Helper()
	ctx := context.Background()
	chunks := make([]*core.Chunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = &core.Chunk{
			PolicyID: policyID,
			Text:     "chunk text",
			Kind:     core.KindGeneral,
			Position: i,
		}
	}
	_, err := s.PutBatch(ctx, policyID, chunks)
	require.NoError(t, err)
	return chunks
}

func TestChunkIterator_Basic(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	seedChunks(t, s, "p1", 3)

	ctx := context.Background()
	iter := NewChunkIterator(s, "p1", 2)
	count := 0

	err := iter.ForEach(ctx, func(chunks []*core.Chunk) error {
		count += len(chunks)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, count, "should iterate all 3 chunks")
}

func TestChunkIterator_BatchSizes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	seedChunks(t, s, "p1", 10)

	tests := []struct {
		name          string
		batchSize     int
		expectedBatch int
	}{
		{"batch size 1", 1, 10},
		{"batch size 3", 3, 4},
		{"batch size 5", 5, 2},
		{"batch size 10", 10, 1},
		{"batch size 100", 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewChunkIterator(s, "p1", tt.batchSize)
			batchCount := 0
			totalChunks := 0

			err := iter.ForEach(context.Background(), func(chunks []*core.Chunk) error {
				batchCount++
				totalChunks += len(chunks)
				assert.LessOrEqual(t, len(chunks), tt.batchSize, "batch should not exceed batchSize")
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBatch, batchCount, "batch count")
			assert.Equal(t, 10, totalChunks, "total chunks")
		})
	}
}

func TestChunkIterator_EmptyPolicy(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	iter := NewChunkIterator(s, "nonexistent", 10)
	called := false

	err := iter.ForEach(context.Background(), func(chunks []*core.Chunk) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called, "callback should not be called for a policy with no chunks")
}

func TestChunkIterator_OnlyVisitsOwnPolicy(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	seedChunks(t, s, "p1", 3)
	seedChunks(t, s, "p2", 5)

	iter := NewChunkIterator(s, "p1", 10)
	var seen []*core.Chunk

	err := iter.ForEach(context.Background(), func(chunks []*core.Chunk) error {
		seen = append(seen, chunks...)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, seen, 3)
	for _, c := range seen {
		assert.Equal(t, "p1", c.PolicyID)
	}
}

func TestChunkIterator_ErrorHandling(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	seedChunks(t, s, "p1", 2)

	iter := NewChunkIterator(s, "p1", 1)
	called := 0

	expectedErr := assert.AnError
	err := iter.ForEach(context.Background(), func(chunks []*core.Chunk) error {
		called++
		if called == 1 {
			return expectedErr
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return callback error")
	assert.Equal(t, 1, called, "should stop on first error")
}

func TestChunkIterator_ContextCancellation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	seedChunks(t, s, "p1", 5)

	ctx, cancel := context.WithCancel(context.Background())
	iter := NewChunkIterator(s, "p1", 1)
	called := 0

	err := iter.ForEach(ctx, func(chunks []*core.Chunk) error {
		called++
		if called == 2 {
			cancel()
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, called, "should process until context canceled")
}

func TestChunkIterator_InvalidBatchSize(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	iter := NewChunkIterator(s, "p1", 0)
	assert.Greater(t, iter.batchSize, 0, "should use default batch size for invalid input")

	iter = NewChunkIterator(s, "p1", -10)
	assert.Greater(t, iter.batchSize, 0, "should use default batch size for negative input")
}
