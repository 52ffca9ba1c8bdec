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


package airag

import (
	"errors"
	"strings"
)

// Config holds connection and model settings for an airag.Provider.
type Config struct {
	// EmbeddingHost is the base URL of the embedding service API.
	EmbeddingHost string

	// ChatHost is the base URL of the chat/completion service API used
	// for classification, evaluation, extraction, and composition.
	ChatHost string

	// EmbeddingModel is the model identifier used for embed_one/embed_batch.
	EmbeddingModel string

	// ChatModel is the model identifier used for all structured and
	// composition calls.
	ChatModel string

	// EmbeddingDim is D, the fixed embedding length this deployment
	// expects. The embedder must produce vectors of exactly this length.
	EmbeddingDim int

	// APIKey authenticates against the backend. Local OpenAI-compatible
	// servers that require no authentication may leave this empty; the
	// provider substitutes a placeholder token in that case.
	APIKey string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) { c.EmbeddingHost = host }
}

// WithChatHost sets the chat/completion service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) { c.ChatHost = host }
}

// WithHost sets both the embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) { c.EmbeddingModel = model }
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) { c.ChatModel = model }
}

// WithEmbeddingDim fixes D, the embedding length this deployment expects.
func WithEmbeddingDim(d int) ConfigOption {
	return func(c *Config) { c.EmbeddingDim = d }
}

// WithAPIKey sets the backend authentication token.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) { c.APIKey = key }
}

// DefaultConfig returns a Config pointed at a local OpenAI-compatible
// server with a 1536-dimensional embedding model.
func DefaultConfig() *Config {
	host := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  host,
		ChatHost:       host,
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
		EmbeddingDim:   1536,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures both hosts carry the /v1 suffix most
// OpenAI-compatible servers require.
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.ChatHost = normalizeHost(c.ChatHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate normalizes and checks that the configuration is complete.
func (c *Config) Validate() error {
	c.Normalize()
	if c.EmbeddingHost == "" {
		return errors.New("airag config: EmbeddingHost is required")
	}
	if c.ChatHost == "" {
		return errors.New("airag config: ChatHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("airag config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("airag config: ChatModel is required")
	}
	if c.EmbeddingDim <= 0 {
		return errors.New("airag config: EmbeddingDim must be positive")
	}
	return nil
}
