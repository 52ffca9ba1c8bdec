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


package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements airag.Embedder using an OpenAI-compatible
// embedding API.
type Embedder struct {
	embedder embeddings.Embedder
	dim      int
	logger   *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete
// type. Used by Provider to manage the instance.
func newEmbedder(cfg *airag.Config) (*Embedder, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.EmbeddingHost),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("airag/openai: building embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("airag/openai: wrapping embedder: %w", err)
	}

	return &Embedder{
		embedder: embedder,
		dim:      cfg.EmbeddingDim,
		logger:   slog.Default().With("component", "airag-openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns airag.Embedder to enforce abstraction.
func NewEmbedder(cfg *airag.Config) (airag.Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newEmbedder(cfg)
}

// EmbedOne generates a vector embedding for a single text string and
// asserts it came back at the configured dimension D.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("embedding single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("embedding failed", "err", err)
		return nil, fmt.Errorf("airag/openai: embed one: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("airag/openai: embed one: empty result")
	}
	if !core.ValidateEmbeddingDimension(vectors[0], e.dim) {
		return nil, fmt.Errorf("airag/openai: embed one: got %d dims, want %d", len(vectors[0]), e.dim)
	}
	return vectors[0], nil
}

// EmbedBatch generates vector embeddings for multiple text strings,
// preserving input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("embedding batch", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("batch embedding failed", "count", len(texts), "err", err)
		return nil, fmt.Errorf("airag/openai: embed batch: %w", err)
	}
	for i, v := range vectors {
		if !core.ValidateEmbeddingDimension(v, e.dim) {
			return nil, fmt.Errorf("airag/openai: embed batch: item %d got %d dims, want %d", i, len(v), e.dim)
		}
	}
	return vectors, nil
}

// Dimension returns D, the fixed length of every vector this embedder
// produces.
func (e *Embedder) Dimension() int {
	return e.dim
}
