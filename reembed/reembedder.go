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
	"fmt"
	"io"
	"time"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/store"
)

// Config holds configuration for a reembedding run.
type Config struct {
	// BatchSize is the number of chunks to process in each batch.
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks).
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed
	// embedding calls.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates reembedding every chunk of a single policy.
type Reembedder struct {
	chunkStore store.Store
	embedder   airag.Embedder
	policyID   string
	config     *Config
	progress   io.Writer
	processor  *BatchProcessor
	iterator   *ChunkIterator
}

// NewReembedder creates a new reembedder for policyID.
// progress: where to write progress output (typically os.Stderr).
func NewReembedder(chunkStore store.Store, embedder airag.Embedder, policyID string, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(chunkStore, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewChunkIterator(chunkStore, policyID, config.BatchSize)

	return &Reembedder{
		chunkStore: chunkStore,
		embedder:   embedder,
		policyID:   policyID,
		config:     config,
		progress:   progress,
		processor:  processor,
		iterator:   iterator,
	}
}

// Run reembeds every chunk belonging to the reembedder's policy.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	total, err := r.chunkStore.Count(ctx, r.policyID, nil)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found for policy %q (0 chunks)\n", r.policyID)
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks for policy %q (batch size: %d)\n",
		total, r.policyID, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(chunks []*core.Chunk) error {
		if err := r.processor.Process(ctx, chunks); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(chunks)
		tracker.Update(processed)

		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
