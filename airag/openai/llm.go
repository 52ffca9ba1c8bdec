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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LLMProvider implements airag.LLMProvider using an OpenAI-compatible
// chat completion API.
type LLMProvider struct {
	client llms.Model
	logger *slog.Logger
}

// newLLMProvider is an internal constructor that returns the concrete
// type. Used by Provider to manage the instance.
func newLLMProvider(cfg *airag.Config) (*LLMProvider, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.ChatHost),
		openai.WithToken(token),
		openai.WithModel(cfg.ChatModel),
	)
	if err != nil {
		return nil, fmt.Errorf("airag/openai: building chat client: %w", err)
	}

	return &LLMProvider{
		client: client,
		logger: slog.Default().With("component", "airag-openai-llm"),
	}, nil
}

// NewLLMProvider creates a new LLM provider using the provided
// configuration.
//
// Returns airag.LLMProvider to enforce abstraction.
func NewLLMProvider(cfg *airag.Config) (airag.LLMProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newLLMProvider(cfg)
}

// structuredCall sends prompt as a single human message and unmarshals the
// JSON response into dst, retrying up to 3 times on malformed JSON.
func (p *LLMProvider) structuredCall(ctx context.Context, prompt string, dst any) error {
	content := []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(prompt)}},
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := p.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return fmt.Errorf("airag/openai: generate content: %w", err)
		}
		if len(response.Choices) < 1 {
			return fmt.Errorf("airag/openai: no choices returned")
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), dst); err != nil {
			lastErr = err
			p.logger.Warn("malformed structured response", "attempt", attempt+1, "err", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("airag/openai: parsing structured response after retries: %w", lastErr)
}

// ClassifyChunk assigns a Kind to a chunk of policy text.
func (p *LLMProvider) ClassifyChunk(ctx context.Context, text, heading string) (core.Kind, error) {
	var result struct {
		Kind string `json:"kind"`
	}
	if err := p.structuredCall(ctx, buildClassifyPrompt(text, heading), &result); err != nil {
		return core.KindUnspecified, err
	}
	kind, ok := core.ParseKind(result.Kind)
	if !ok {
		p.logger.Warn("classifier returned out-of-enum kind", "kind", result.Kind)
		return core.KindUnspecified, fmt.Errorf("airag/openai: out-of-enum kind %q", result.Kind)
	}
	return kind, nil
}

// EvaluateExclusion checks whether chunkText excludes item.
func (p *LLMProvider) EvaluateExclusion(ctx context.Context, chunkText, item string) (airag.ExclusionVerdict, error) {
	var result airag.ExclusionVerdict
	if err := p.structuredCall(ctx, buildExclusionPrompt(chunkText, item), &result); err != nil {
		return airag.ExclusionVerdict{}, err
	}
	return result, nil
}

// EvaluateInclusion checks whether chunkText covers item.
func (p *LLMProvider) EvaluateInclusion(ctx context.Context, chunkText, item string) (airag.InclusionVerdict, error) {
	var result airag.InclusionVerdict
	if err := p.structuredCall(ctx, buildInclusionPrompt(chunkText, item), &result); err != nil {
		return airag.InclusionVerdict{}, err
	}
	return result, nil
}

// ExtractFinancials pulls deductible/cap/condition figures from chunkText.
func (p *LLMProvider) ExtractFinancials(ctx context.Context, chunkText string) (airag.FinancialExtract, error) {
	var result airag.FinancialExtract
	if err := p.structuredCall(ctx, buildFinancialPrompt(chunkText), &result); err != nil {
		return airag.FinancialExtract{}, err
	}
	return result, nil
}

// Compose renders the final natural-language verdict, streaming tokens
// to w as they arrive.
func (p *LLMProvider) Compose(ctx context.Context, structuredContext string, w airag.TokenWriter) error {
	content := []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(buildComposePrompt(structuredContext))}},
	}

	var streamErr error
	_, err := p.client.GenerateContent(ctx, content, llms.WithTemperature(0.2),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if streamErr != nil {
				return streamErr
			}
			if err := w.WriteToken(string(chunk)); err != nil {
				streamErr = err
				return err
			}
			return nil
		}),
	)
	if streamErr != nil {
		return fmt.Errorf("airag/openai: writing composed token: %w", streamErr)
	}
	if err != nil {
		return fmt.Errorf("airag/openai: compose: %w", err)
	}
	return nil
}
