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
	"log/slog"

	"github.com/poiesic/guardrail/airag"
)

// Provider implements airag.Provider using OpenAI-compatible services.
// It manages an embedder and an LLM provider sharing one configuration.
type Provider struct {
	embedder    *Embedder
	llmProvider *LLMProvider
	logger      *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible
// services. The config is validated and normalized before use.
//
// Returns airag.Provider (not *Provider) to enforce abstraction and
// prevent coupling to OpenAI-specific implementation details.
func NewProvider(cfg *airag.Config) (airag.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	llmProvider, err := newLLMProvider(cfg)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder:    embedder,
		llmProvider: llmProvider,
		logger:      slog.Default().With("component", "airag-openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() airag.Embedder {
	return p.embedder
}

// LLMProvider returns the LLM reasoning service.
func (p *Provider) LLMProvider() airag.LLMProvider {
	return p.llmProvider
}

// Close releases resources held by the provider. Currently a no-op as
// the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing openai provider")
	return nil
}
