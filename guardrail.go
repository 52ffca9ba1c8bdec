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


package guardrail

import (
	"log/slog"

	"github.com/poiesic/guardrail/agent"
	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/airag/openai"
	"github.com/poiesic/guardrail/config"
	"github.com/poiesic/guardrail/ingestion"
	"github.com/poiesic/guardrail/orchestrator"
	"github.com/poiesic/guardrail/store"
	"github.com/poiesic/guardrail/store/badger"
)

// Guardrail wires together the chunk store, the LLM/embedding
// provider, the coverage agent, and the chat orchestrator into one
// process. It is the top-level entry point cmd/guardrail constructs.
type Guardrail struct {
	backend      *badger.Backend
	chunkStore   store.Store
	policyRepo   *badger.PolicyRepository
	provider     airag.Provider
	agent        *agent.Agent
	orchestrator *orchestrator.Orchestrator
	cfg          *config.Config
	logger       *slog.Logger
}

// Option configures a Guardrail.
type Option func(*guardrailOptions)

type guardrailOptions struct {
	airagConfig *airag.Config
	coreConfig  *config.Config
}

// WithAIRAGConfig sets the embedding/LLM provider connection settings.
// Default is airag.DefaultConfig().
func WithAIRAGConfig(cfg *airag.Config) Option {
	return func(o *guardrailOptions) { o.airagConfig = cfg }
}

// WithCoreConfig sets the core's chunking, retrieval, and guardrail
// tunables. Default is config.Default().
func WithCoreConfig(cfg *config.Config) Option {
	return func(o *guardrailOptions) { o.coreConfig = cfg }
}

// New opens a BadgerDB-backed Guardrail rooted at filePath.
func New(filePath string, opts ...Option) (*Guardrail, error) {
	options := &guardrailOptions{
		airagConfig: airag.DefaultConfig(),
		coreConfig:  config.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	chunkStore, err := badger.NewChunkStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.airagConfig)
	if err != nil {
		chunkStore.Close()
		backend.Close()
		return nil, err
	}

	coverageAgent, err := agent.New(options.coreConfig, chunkStore, provider)
	if err != nil {
		provider.Close()
		chunkStore.Close()
		backend.Close()
		return nil, err
	}

	chat, err := orchestrator.New(options.coreConfig, coverageAgent)
	if err != nil {
		coverageAgent.Release()
		provider.Close()
		chunkStore.Close()
		backend.Close()
		return nil, err
	}

	return &Guardrail{
		backend:      backend,
		chunkStore:   chunkStore,
		policyRepo:   badger.NewPolicyRepository(backend),
		provider:     provider,
		agent:        coverageAgent,
		orchestrator: chat,
		cfg:          options.coreConfig,
		logger:       slog.Default(),
	}, nil
}

// Close releases every resource the Guardrail opened, in reverse
// construction order.
func (g *Guardrail) Close() error {
	g.agent.Release()

	if err := g.provider.Close(); err != nil {
		g.logger.Error("error closing airag provider", "err", err)
	}

	if err := g.chunkStore.Close(); err != nil {
		g.logger.Error("error closing chunk store", "err", err)
		return err
	}

	if err := g.backend.Close(); err != nil {
		g.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ChunkStore returns the underlying chunk store.
func (g *Guardrail) ChunkStore() store.Store {
	return g.chunkStore
}

// PolicyRepository returns the policy display-metadata repository.
// Nothing in the agent or orchestrator packages reads from it; it
// exists for external CRUD tooling that manages policy records
// alongside the chunk store.
func (g *Guardrail) PolicyRepository() *badger.PolicyRepository {
	return g.policyRepo
}

// Agent returns the coverage guardrail agent.
func (g *Guardrail) Agent() *agent.Agent {
	return g.agent
}

// Provider returns the underlying embedding/LLM provider.
func (g *Guardrail) Provider() airag.Provider {
	return g.provider
}

// Orchestrator returns the chat orchestrator sessions are bound through.
func (g *Guardrail) Orchestrator() *orchestrator.Orchestrator {
	return g.orchestrator
}

// NewIngestionPipeline creates an ingestion pipeline sharing this
// Guardrail's chunk store and provider.
func (g *Guardrail) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(g.cfg, g.chunkStore, g.provider, opts...)
}
