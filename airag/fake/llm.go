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

import (
	"context"
	"strings"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/core"
)

// LLMProvider is a test double for airag.LLMProvider. Default behavior
// is a simple keyword heuristic, deterministic and fast enough to run
// in unit tests without a network call; custom behavior can be
// injected per-method via the exported function fields.
type LLMProvider struct {
	ClassifyChunkFunc      func(ctx context.Context, text, heading string) (core.Kind, error)
	EvaluateExclusionFunc  func(ctx context.Context, chunkText, item string) (airag.ExclusionVerdict, error)
	EvaluateInclusionFunc  func(ctx context.Context, chunkText, item string) (airag.InclusionVerdict, error)
	ExtractFinancialsFunc  func(ctx context.Context, chunkText string) (airag.FinancialExtract, error)
	ComposeFunc            func(ctx context.Context, structuredContext string, w airag.TokenWriter) error

	callCount int
}

// NewLLMProvider creates a fake LLM provider with default keyword-based
// behavior.
func NewLLMProvider() *LLMProvider {
	return &LLMProvider{}
}

// ClassifyChunk returns KindExclusion, KindInclusion, KindDefinition,
// KindLimitation or KindProcedure when the heading or text contains an
// obvious cue word for that kind, otherwise KindGeneral.
func (p *LLMProvider) ClassifyChunk(ctx context.Context, text, heading string) (core.Kind, error) {
	p.callCount++
	if p.ClassifyChunkFunc != nil {
		return p.ClassifyChunkFunc(ctx, text, heading)
	}
	lower := strings.ToLower(heading + " " + text)
	switch {
	case strings.Contains(lower, "exclu"):
		return core.KindExclusion, nil
	case strings.Contains(lower, "cover") || strings.Contains(lower, "includ"):
		return core.KindInclusion, nil
	case strings.Contains(lower, "definition") || strings.Contains(lower, "means"):
		return core.KindDefinition, nil
	case strings.Contains(lower, "limit") || strings.Contains(lower, "deductible") || strings.Contains(lower, "cap"):
		return core.KindLimitation, nil
	case strings.Contains(lower, "claim") || strings.Contains(lower, "procedure") || strings.Contains(lower, "notify"):
		return core.KindProcedure, nil
	default:
		return core.KindGeneral, nil
	}
}

// EvaluateExclusion reports the item excluded if its name appears in
// chunkText alongside a negation cue.
func (p *LLMProvider) EvaluateExclusion(ctx context.Context, chunkText, item string) (airag.ExclusionVerdict, error) {
	p.callCount++
	if p.EvaluateExclusionFunc != nil {
		return p.EvaluateExclusionFunc(ctx, chunkText, item)
	}
	lower := strings.ToLower(chunkText)
	mentioned := strings.Contains(lower, strings.ToLower(item))
	negated := strings.Contains(lower, "not cover") || strings.Contains(lower, "does not apply") ||
		strings.Contains(lower, "exclud")
	if mentioned && negated {
		return airag.ExclusionVerdict{Excluded: true, Confidence: 0.85, Reason: "item named alongside an exclusion cue"}, nil
	}
	return airag.ExclusionVerdict{Excluded: false, Confidence: 0.55, Reason: "no exclusion cue found for item"}, nil
}

// EvaluateInclusion reports the item covered if its name appears in
// chunkText alongside a coverage cue.
func (p *LLMProvider) EvaluateInclusion(ctx context.Context, chunkText, item string) (airag.InclusionVerdict, error) {
	p.callCount++
	if p.EvaluateInclusionFunc != nil {
		return p.EvaluateInclusionFunc(ctx, chunkText, item)
	}
	lower := strings.ToLower(chunkText)
	mentioned := strings.Contains(lower, strings.ToLower(item))
	covered := strings.Contains(lower, "cover") || strings.Contains(lower, "includ")
	if mentioned && covered {
		return airag.InclusionVerdict{Covered: true, Confidence: 0.8, Reason: "item named alongside a coverage cue"}, nil
	}
	return airag.InclusionVerdict{Covered: false, Confidence: 0.5, Reason: "no coverage cue found for item"}, nil
}

// ExtractFinancials is a no-op by default; tests that need figures
// should set ExtractFinancialsFunc.
func (p *LLMProvider) ExtractFinancials(ctx context.Context, chunkText string) (airag.FinancialExtract, error) {
	p.callCount++
	if p.ExtractFinancialsFunc != nil {
		return p.ExtractFinancialsFunc(ctx, chunkText)
	}
	return airag.FinancialExtract{}, nil
}

// Compose writes the structured context verbatim to w, one call.
func (p *LLMProvider) Compose(ctx context.Context, structuredContext string, w airag.TokenWriter) error {
	p.callCount++
	if p.ComposeFunc != nil {
		return p.ComposeFunc(ctx, structuredContext, w)
	}
	return w.WriteToken(structuredContext)
}

// CallCount returns the number of times any method was called.
func (p *LLMProvider) CallCount() int {
	return p.callCount
}

// Reset clears the call count and all injected behavior.
func (p *LLMProvider) Reset() {
	p.callCount = 0
	p.ClassifyChunkFunc = nil
	p.EvaluateExclusionFunc = nil
	p.EvaluateInclusionFunc = nil
	p.ExtractFinancialsFunc = nil
	p.ComposeFunc = nil
}
