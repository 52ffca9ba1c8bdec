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


package fake

import "github.com/poiesic/guardrail/airag"

// Provider is a test double for airag.Provider. It aggregates a fake
// embedder and a fake LLM provider.
type Provider struct {
	embedder    *Embedder
	llmProvider *LLMProvider
}

// NewProvider creates a new fake provider with default mock services
// and a 384-dimensional embedder.
//
// Returns airag.Provider for consistency with production constructors.
// Use GetEmbedder()/GetLLMProvider() to access concrete types for test
// assertions.
func NewProvider() airag.Provider {
	return &Provider{
		embedder:    NewEmbedder(384),
		llmProvider: NewLLMProvider(),
	}
}

// NewProviderWithServices creates a fake provider wrapping the given
// embedder and LLM provider, for tests that need custom injected
// behavior on construction.
func NewProviderWithServices(embedder *Embedder, llmProvider *LLMProvider) airag.Provider {
	return &Provider{embedder: embedder, llmProvider: llmProvider}
}

// Embedder returns the fake embedder.
func (p *Provider) Embedder() airag.Embedder {
	return p.embedder
}

// LLMProvider returns the fake LLM provider.
func (p *Provider) LLMProvider() airag.LLMProvider {
	return p.llmProvider
}

// Close is a no-op for the fake provider.
func (p *Provider) Close() error {
	return nil
}

// GetEmbedder returns the underlying fake embedder for test assertions.
func (p *Provider) GetEmbedder() *Embedder {
	return p.embedder
}

// GetLLMProvider returns the underlying fake LLM provider for test
// assertions.
func (p *Provider) GetLLMProvider() *LLMProvider {
	return p.llmProvider
}
