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


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/chunk"
	"github.com/poiesic/guardrail/config"
	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/extract"
	"github.com/poiesic/guardrail/store"
)

// Result is the outcome of a successful Ingest call.
type Result struct {
	PolicyID   string
	ChunkCount int
	Pages      int
}

// Pipeline turns a policy document into stored chunks.
type Pipeline struct {
	extractor     *extract.Extractor
	chunker       *chunk.Chunker
	classifier    *chunk.Classifier
	store         store.Store
	embedder      airag.Embedder
	embeddingPool *ants.Pool
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the embedding worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithExtractorOptions registers additional text-extraction strategies
// beyond the built-in plain-text fast path.
func WithExtractorOptions(opts ...extract.Option) Option {
	return func(p *Pipeline) error {
		p.extractor = extract.New(opts...)
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(cfg *config.Config, chunkStore store.Store, provider airag.Provider, opts ...Option) (*Pipeline, error) {
	if chunkStore == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	logger := slog.Default()

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		extractor:     extract.New(),
		chunker:       chunk.New(cfg),
		classifier:    chunk.NewClassifier(provider.LLMProvider(), cfg.LLMClassificationRefinement),
		store:         chunkStore,
		embedder:      provider.Embedder(),
		embeddingPool: embeddingPool,
		logger:        logger,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// Ingest runs documentBytes through extraction, chunking,
// classification, embedding, and storage for policyID, returning the
// number of chunks stored and pages seen. Per-page extraction
// failures surface from the extractor and are logged by its caller.
// A document with no extractable text yields a Result with zero
// chunks; the pipeline fails outright on any other extraction error,
// or when embedding or storage fails.
func (p *Pipeline) Ingest(ctx context.Context, policyID string, documentBytes []byte, declaredMime string) (*Result, error) {
	if policyID == "" {
		return nil, ErrPolicyIDRequired
	}

	blocks, err := p.extractor.ExtractBlocks(documentBytes, declaredMime)
	if errors.Is(err, extract.ErrEmptyDocument) {
		return &Result{PolicyID: policyID, ChunkCount: 0, Pages: 0}, nil
	}
	if err != nil {
		return nil, err
	}

	chunks := p.chunker.Split(blocks, policyID)
	if len(chunks) == 0 {
		return &Result{PolicyID: policyID, ChunkCount: 0, Pages: maxPage(blocks)}, nil
	}

	for _, c := range chunks {
		kind, err := p.classifier.Classify(ctx, c.Text, c.SectionTitle)
		if err != nil {
			p.logger.Warn("chunk classification failed, keeping heuristic prior", "err", err)
			continue
		}
		c.Kind = kind
	}

	if err := p.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	if _, err := p.store.PutBatch(ctx, policyID, chunks); err != nil {
		return nil, err
	}

	return &Result{
		PolicyID:   policyID,
		ChunkCount: len(chunks),
		Pages:      maxPage(blocks),
	}, nil
}

// embedChunks fans embedding calls out across the embedding pool, one
// text per submitted task, writing each result directly into the
// chunk it came from so pool-scheduling order never disturbs which
// chunk gets which vector.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.Chunk) error {
	var wg sync.WaitGroup
	errs := make([]error, len(chunks))

	for i, c := range chunks {
		i, c := i, c
		wg.Add(1)
		task := func() {
			defer wg.Done()
			vec, err := p.embedder.EmbedOne(ctx, c.Text)
			if err != nil {
				errs[i] = err
				return
			}
			c.Embedding = vec
		}
		if err := p.embeddingPool.Submit(task); err != nil {
			wg.Done()
			errs[i] = err
		}
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func maxPage(blocks []core.TextBlock) int {
	max := 0
	for _, b := range blocks {
		if b.PageNumber > max {
			max = b.PageNumber
		}
	}
	return max
}

// Release releases resources held by the pipeline, including the
// embedding worker pool. The pipeline must not be used after Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
