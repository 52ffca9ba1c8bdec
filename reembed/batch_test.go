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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/guardrail/core"
)

// stubEmbedder is a minimal airag.Embedder test double.
type stubEmbedder struct {
	embedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *stubEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.embedBatchFunc != nil {
		return e.embedBatchFunc(ctx, texts)
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1.0, 2.0, 2.0} // magnitude = 3.0
	}
	return result, nil
}

func (e *stubEmbedder) Dimension() int { return 3 }

func TestBatchProcessor_Process(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	chunks := seedChunks(t, s, "p1", 2)

	embedder := &stubEmbedder{}
	processor := NewBatchProcessor(s, embedder, 3, 10*time.Millisecond)

	err := processor.Process(ctx, chunks)
	require.NoError(t, err)

	for _, c := range chunks {
		fetched, err := s.Fetch(ctx, c.Id)
		require.NoError(t, err)
		require.NotEmpty(t, fetched.Embedding, "should have embedding")

		var magnitude float32
		for _, v := range fetched.Embedding {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	embedder := &stubEmbedder{}
	processor := NewBatchProcessor(s, embedder, 3, 10*time.Millisecond)

	err := processor.Process(context.Background(), []*core.Chunk{})
	require.NoError(t, err, "empty batch should not error")
}

func TestBatchProcessor_EmbeddingError(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	chunks := seedChunks(t, s, "p1", 1)

	expectedErr := errors.New("embedding error")
	embedder := &stubEmbedder{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, expectedErr
		},
	}
	processor := NewBatchProcessor(s, embedder, 3, 10*time.Millisecond)

	err := processor.Process(ctx, chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding error")
}

func TestBatchProcessor_Retry(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	chunks := seedChunks(t, s, "p1", 1)

	attempts := 0
	embedder := &stubEmbedder{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 2 {
				return nil, errors.New("temporary error")
			}
			result := make([][]float32, len(texts))
			for i := range texts {
				result[i] = []float32{1.0, 0.0, 0.0}
			}
			return result, nil
		},
	}
	processor := NewBatchProcessor(s, embedder, 3, 10*time.Millisecond)

	err := processor.Process(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "should retry on failure")

	fetched, err := s.Fetch(ctx, chunks[0].Id)
	require.NoError(t, err)
	require.NotEmpty(t, fetched.Embedding)
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	chunks := seedChunks(t, s, "p1", 1)

	ctx, cancel := context.WithCancel(context.Background())
	embedder := &stubEmbedder{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			cancel()
			return nil, errors.New("error")
		},
	}
	processor := NewBatchProcessor(s, embedder, 3, 10*time.Millisecond)

	err := processor.Process(ctx, chunks)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchProcessor_VectorNormalization(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	chunks := seedChunks(t, s, "p1", 1)

	embedder := &stubEmbedder{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			// Vector (3, 4) has magnitude 5.
			return [][]float32{{3.0, 4.0}}, nil
		},
	}
	processor := NewBatchProcessor(s, embedder, 3, 10*time.Millisecond)

	err := processor.Process(ctx, chunks)
	require.NoError(t, err)

	fetched, err := s.Fetch(ctx, chunks[0].Id)
	require.NoError(t, err)
	vec := fetched.Embedding
	require.Len(t, vec, 2)

	assert.InDelta(t, 0.6, vec[0], 0.001)
	assert.InDelta(t, 0.8, vec[1], 0.001)
}
