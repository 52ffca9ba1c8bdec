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


// Package config holds the tunables the coverage-guardrail core
// recognizes: chunking, retrieval depth, guardrail thresholds, fan-out,
// and retry policy. It follows the functional-options construction
// pattern used throughout this module's provider configs.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the core recognizes.
type Config struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is the soft overlap fraction applied across chunk
	// boundaries (e.g. 0.15 for 15%).
	ChunkOverlap float64 `yaml:"chunk_overlap"`

	// EmbeddingDim is D, fixed per deployment.
	EmbeddingDim int `yaml:"embedding_dim"`

	// KExclusion, KInclusion, KFinancial are per-step retrieval depths.
	KExclusion int `yaml:"k_exclusion"`
	KInclusion int `yaml:"k_inclusion"`
	KFinancial int `yaml:"k_financial"`

	// TauExclusion, TauInclusion are LLM-evaluation confidence thresholds.
	TauExclusion float32 `yaml:"tau_exclusion"`
	TauInclusion float32 `yaml:"tau_inclusion"`

	// FanoutLimit bounds concurrent per-step LLM calls.
	FanoutLimit int `yaml:"fanout_limit"`

	// ComposeStream is carried in the configuration but not read by the
	// agent, which always streams verdict composition.
	ComposeStream bool `yaml:"compose_stream"`

	// RetryBaseDelay and RetryMaxTries govern the retry policy for
	// retriable provider calls.
	RetryBaseDelay time.Duration `yaml:"retry_base_ms"`
	RetryMaxTries  int           `yaml:"retry_max_tries"`

	// LLMClassificationRefinement enables stage-2 LLM refinement of the
	// heuristic classification prior. Off by default.
	LLMClassificationRefinement bool `yaml:"llm_classification_refinement"`

	// SessionBacklog bounds the in-flight turn count per chat session.
	SessionBacklog int `yaml:"session_backlog"`

	// ComposeSemaphore bounds concurrent LLM compose streams across
	// all sessions.
	ComposeSemaphore int `yaml:"compose_semaphore"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithChunkSize sets the target chunk length in characters.
func WithChunkSize(n int) Option {
	return func(c *Config) { c.ChunkSize = n }
}

// WithChunkOverlap sets the soft overlap fraction.
func WithChunkOverlap(frac float64) Option {
	return func(c *Config) { c.ChunkOverlap = frac }
}

// WithEmbeddingDim fixes the embedding dimension D for the deployment.
func WithEmbeddingDim(d int) Option {
	return func(c *Config) { c.EmbeddingDim = d }
}

// WithRetrievalDepths sets the per-step retrieval depths.
func WithRetrievalDepths(kExcl, kIncl, kFin int) Option {
	return func(c *Config) {
		c.KExclusion = kExcl
		c.KInclusion = kIncl
		c.KFinancial = kFin
	}
}

// WithThresholds sets the exclusion and inclusion confidence thresholds.
func WithThresholds(tauExcl, tauIncl float32) Option {
	return func(c *Config) {
		c.TauExclusion = tauExcl
		c.TauInclusion = tauIncl
	}
}

// WithFanoutLimit bounds concurrent per-step LLM calls.
func WithFanoutLimit(n int) Option {
	return func(c *Config) { c.FanoutLimit = n }
}

// WithComposeStream toggles streaming verdict composition.
func WithComposeStream(stream bool) Option {
	return func(c *Config) { c.ComposeStream = stream }
}

// WithRetryPolicy sets the retry base delay and max tries for retriable
// provider calls.
func WithRetryPolicy(baseDelay time.Duration, maxTries int) Option {
	return func(c *Config) {
		c.RetryBaseDelay = baseDelay
		c.RetryMaxTries = maxTries
	}
}

// WithLLMClassificationRefinement enables or disables stage-2 LLM
// refinement of the chunk classifier's heuristic prior.
func WithLLMClassificationRefinement(enabled bool) Option {
	return func(c *Config) { c.LLMClassificationRefinement = enabled }
}

// WithSessionBacklog bounds the in-flight turn count per session.
func WithSessionBacklog(n int) Option {
	return func(c *Config) { c.SessionBacklog = n }
}

// WithComposeSemaphore bounds concurrent compose streams across sessions.
func WithComposeSemaphore(n int) Option {
	return func(c *Config) { c.ComposeSemaphore = n }
}

// Default returns a Config with reasonable defaults for production use
// (τ=0.6, K_excl=8, retry base 200ms factor-2 cap-3, fan-out 4, session
// backlog 1).
func Default() *Config {
	return &Config{
		ChunkSize:        750,
		ChunkOverlap:     0.15,
		EmbeddingDim:     1536,
		KExclusion:       8,
		KInclusion:       8,
		KFinancial:       4,
		TauExclusion:     0.6,
		TauInclusion:     0.6,
		FanoutLimit:      4,
		ComposeStream:    true,
		RetryBaseDelay:   200 * time.Millisecond,
		RetryMaxTries:    3,
		SessionBacklog:   1,
		ComposeSemaphore: 8,
	}
}

// New creates a Config with the default values and applies the provided
// options. This is the recommended way to build a custom Config.
func New(opts ...Option) *Config {
	cfg := Default()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a YAML config file and applies it on top of Default(),
// then applies any options on top of that — so flags/options always
// win over file configuration.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	// A bare integer under retry_base_ms is a count of milliseconds; the
	// Duration field alone would read it as nanoseconds.
	var retry struct {
		BaseMS *int64 `yaml:"retry_base_ms"`
	}
	if err := yaml.Unmarshal(data, &retry); err == nil && retry.BaseMS != nil {
		cfg.RetryBaseDelay = time.Duration(*retry.BaseMS) * time.Millisecond
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// Validate checks that the configuration is self-consistent.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= 1 {
		return errors.New("config: ChunkOverlap must be in [0, 1)")
	}
	if c.EmbeddingDim <= 0 {
		return errors.New("config: EmbeddingDim must be positive")
	}
	if c.KExclusion <= 0 || c.KInclusion <= 0 || c.KFinancial <= 0 {
		return errors.New("config: retrieval depths must be positive")
	}
	if c.TauExclusion < 0 || c.TauExclusion > 1 {
		return errors.New("config: TauExclusion must be in [0, 1]")
	}
	if c.TauInclusion < 0 || c.TauInclusion > 1 {
		return errors.New("config: TauInclusion must be in [0, 1]")
	}
	if c.FanoutLimit <= 0 {
		return errors.New("config: FanoutLimit must be positive")
	}
	if c.RetryMaxTries <= 0 {
		return errors.New("config: RetryMaxTries must be positive")
	}
	if c.SessionBacklog <= 0 {
		return errors.New("config: SessionBacklog must be positive")
	}
	if c.ComposeSemaphore <= 0 {
		return errors.New("config: ComposeSemaphore must be positive")
	}
	return nil
}
