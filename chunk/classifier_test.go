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


package chunk

import (
	"context"
	"testing"

	"github.com/poiesic/guardrail/airag/fake"
	"github.com/poiesic/guardrail/core"
)

func TestClassifyHeuristic(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		heading string
		want    core.Kind
	}{
		{"exclusion cue", "Turbo components are not covered under this policy.", "", core.KindExclusion},
		{"inclusion cue", "We will pay for engine repairs in full.", "", core.KindInclusion},
		{"limitation cue", "The deductible is 500 for this coverage.", "", core.KindLimitation},
		{"definition cue", "Breakdown means a sudden mechanical failure.", "", core.KindDefinition},
		{"procedure cue", "You must notify us within 30 days of a loss.", "", core.KindProcedure},
		{"heading fallback", "See the schedule below for details.", "EXCLUSIONS", core.KindExclusion},
		{"no cue no heading", "This document describes general terms.", "", core.KindGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyHeuristic(tt.text, tt.heading); got != tt.want {
				t.Errorf("classifyHeuristic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_NoRefinement(t *testing.T) {
	c := NewClassifier(nil, false)
	kind, err := c.Classify(context.Background(), "Turbo components are excluded.", "")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if kind != core.KindExclusion {
		t.Errorf("Classify() = %v, want KindExclusion", kind)
	}
}

func TestClassifier_RefinementOverridesPrior(t *testing.T) {
	llm := fake.NewLLMProvider()
	llm.ClassifyChunkFunc = func(ctx context.Context, text, heading string) (core.Kind, error) {
		return core.KindLimitation, nil
	}
	c := NewClassifier(llm, true)
	kind, err := c.Classify(context.Background(), "Turbo components are excluded.", "")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if kind != core.KindLimitation {
		t.Errorf("Classify() = %v, want KindLimitation (refined)", kind)
	}
}

func TestClassifier_NotRefinedForGeneral(t *testing.T) {
	llm := fake.NewLLMProvider()
	called := false
	llm.ClassifyChunkFunc = func(ctx context.Context, text, heading string) (core.Kind, error) {
		called = true
		return core.KindExclusion, nil
	}
	c := NewClassifier(llm, true)
	kind, err := c.Classify(context.Background(), "This document describes general terms.", "")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if kind != core.KindGeneral {
		t.Errorf("Classify() = %v, want KindGeneral", kind)
	}
	if called {
		t.Error("expected LLM not to be consulted for a GENERAL prior")
	}
}

func TestClassifier_OutOfEnumAnswerDiscarded(t *testing.T) {
	llm := fake.NewLLMProvider()
	llm.ClassifyChunkFunc = func(ctx context.Context, text, heading string) (core.Kind, error) {
		return core.KindUnspecified, nil
	}
	c := NewClassifier(llm, true)
	kind, err := c.Classify(context.Background(), "Turbo components are excluded.", "")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if kind != core.KindExclusion {
		t.Errorf("Classify() = %v, want heuristic prior KindExclusion", kind)
	}
}
