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


// Package airag declares the capability interfaces the coverage
// guardrail depends on: embedding generation and LLM reasoning over
// policy text. Concrete implementations live in airag/openai (backed
// by langchaingo) and airag/fake (deterministic test doubles).
package airag

import (
	"context"

	"github.com/poiesic/guardrail/core"
)

// Embedder generates vector embeddings from policy text for semantic
// similarity search. Implementations must be thread-safe for
// concurrent use and must return vectors of a fixed dimension D,
// established at construction.
type Embedder interface {
	// EmbedOne generates a vector embedding for a single text string.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vector embeddings for multiple text strings.
	// The returned slice preserves input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns D, the fixed length of every vector this
	// embedder produces.
	Dimension() int
}

// ExclusionVerdict is the structured result of evaluate_exclusion.
type ExclusionVerdict struct {
	Excluded   bool    `json:"excluded"`
	Confidence float32 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// InclusionVerdict is the structured result of evaluate_inclusion.
type InclusionVerdict struct {
	Covered    bool    `json:"covered"`
	Confidence float32 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// FinancialExtract is the structured result of extract_financials.
// Deductible and Cap are nil when the chunk text names none.
type FinancialExtract struct {
	Deductible *float64 `json:"deductible,omitempty"`
	Cap        *float64 `json:"cap,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
}

// LLMProvider exposes the reasoning operations the guardrail's fixed
// state machine calls at each step. Structured calls (everything but
// Compose) must return JSON conforming to their declared schema;
// non-conforming answers are the caller's responsibility to treat as
// UNKNOWN — this interface reports the parse error rather than
// silently substituting a default.
type LLMProvider interface {
	// ClassifyChunk assigns a Kind to a chunk of policy text given its
	// text and the heading (section title) it fell under, refining the
	// chunker's heuristic prior.
	ClassifyChunk(ctx context.Context, text, heading string) (core.Kind, error)

	// EvaluateExclusion checks whether chunkText excludes item.
	EvaluateExclusion(ctx context.Context, chunkText, item string) (ExclusionVerdict, error)

	// EvaluateInclusion checks whether chunkText covers item.
	EvaluateInclusion(ctx context.Context, chunkText, item string) (InclusionVerdict, error)

	// ExtractFinancials pulls deductible/cap/condition figures out of
	// chunkText, refining the regex pre-pass the caller ran first.
	ExtractFinancials(ctx context.Context, chunkText string) (FinancialExtract, error)

	// Compose renders the final natural-language verdict from a
	// structured context blob (typically JSON-marshaled). The writer
	// receives streamed tokens if the implementation supports
	// streaming; implementations that cannot stream write once and
	// return.
	Compose(ctx context.Context, structuredContext string, w TokenWriter) error
}

// TokenWriter receives streamed composition tokens. Implementations
// backed by a chat UI typically wrap an SSE or websocket connection;
// tests typically wrap a strings.Builder.
type TokenWriter interface {
	WriteToken(token string) error
}

// Provider aggregates an Embedder and an LLMProvider for convenient
// initialization and lifecycle management, mirroring the shape of a
// single configured backend (one base URL, one set of credentials).
type Provider interface {
	Embedder() Embedder
	LLMProvider() LLMProvider
	Close() error
}
