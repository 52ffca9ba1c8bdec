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
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReembedder_Run(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	seedChunks(t, s, "p1", 10)

	var buf bytes.Buffer
	embedder := &stubEmbedder{}
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reembedder := NewReembedder(s, embedder, "p1", config, &buf)
	err := reembedder.Run(ctx)
	require.NoError(t, err)

	chunks, err := s.ListPolicy(ctx, "p1", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 10)

	for _, c := range chunks {
		require.NotEmpty(t, c.Embedding, "chunk %d should have an embedding", c.Id)
		var magnitude float32
		for _, v := range c.Embedding {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
	}

	output := buf.String()
	assert.Contains(t, output, "10/10", "should show completion")
}

func TestReembedder_EmptyPolicy(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	var buf bytes.Buffer
	embedder := &stubEmbedder{}
	config := DefaultConfig()

	reembedder := NewReembedder(s, embedder, "nonexistent", config, &buf)
	err := reembedder.Run(context.Background())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "0 chunks", "should report zero chunks")
}

func TestReembedder_ContextCancellation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	seedChunks(t, s, "p1", 10)

	ctx, cancel := context.WithCancel(context.Background())

	callCount := 0
	embedder := &stubEmbedder{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			callCount++
			if callCount == 2 {
				cancel()
			}
			result := make([][]float32, len(texts))
			for i := range result {
				result[i] = []float32{1.0, 0.0, 0.0}
			}
			return result, nil
		},
	}

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reembedder := NewReembedder(s, embedder, "p1", config, &buf)
	err := reembedder.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReembedder_EmbeddingError(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	seedChunks(t, s, "p1", 1)

	embedder := &stubEmbedder{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("persistent error")
		},
	}

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      1,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     10 * time.Millisecond,
	}

	reembedder := NewReembedder(s, embedder, "p1", config, &buf)
	err := reembedder.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistent error")
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Greater(t, config.BatchSize, 0, "batch size should be positive")
	assert.Greater(t, config.ReportInterval, 0, "report interval should be positive")
	assert.Greater(t, config.MaxRetries, 0, "max retries should be positive")
	assert.Greater(t, config.RetryDelay, time.Duration(0), "retry delay should be positive")
}

func TestReembedder_ProgressTracking(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	seedChunks(t, s, "p1", 25)

	var buf bytes.Buffer
	embedder := &stubEmbedder{}
	config := &Config{
		BatchSize:      5,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reembedder := NewReembedder(s, embedder, "p1", config, &buf)
	err := reembedder.Run(context.Background())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Progress:", "should show progress")
	assert.Contains(t, output, "25/25", "should show final count")
}
