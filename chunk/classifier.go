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
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/core"
)

var (
	exclusionCues  = []string{"not covered", "excluded", "does not cover", "we do not insure", "following are not included", "except", "no coverage for"}
	inclusionCues  = []string{"we will pay", "coverage includes", "is covered", "benefits include"}
	definitionCues = []string{"means", "defined as", "refers to"}
	limitationCues = []string{"up to", "maximum", "cap", "deductible", "limit"}
	procedureCues  = []string{"must", "required to", "notify"}

	withinDaysRe = regexp.MustCompile(`within \d+ days`)

	refinableKinds = core.NewKindSet(core.KindExclusion, core.KindInclusion, core.KindLimitation)
)

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// classifyHeuristic assigns a tentative Kind from keyword cues in
// text, falling back to the chunk's section heading when the text
// itself carries no cue word.
func classifyHeuristic(text, heading string) core.Kind {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, exclusionCues):
		return core.KindExclusion
	case containsAny(lower, inclusionCues):
		return core.KindInclusion
	case containsAny(lower, definitionCues):
		return core.KindDefinition
	case containsAny(lower, limitationCues):
		return core.KindLimitation
	case containsAny(lower, procedureCues) || withinDaysRe.MatchString(lower):
		return core.KindProcedure
	}

	headingLower := strings.ToLower(heading)
	switch {
	case strings.Contains(headingLower, "exclusion"):
		return core.KindExclusion
	case strings.Contains(headingLower, "coverage"), strings.Contains(headingLower, "inclusion"):
		return core.KindInclusion
	case strings.Contains(headingLower, "definition"):
		return core.KindDefinition
	case strings.Contains(headingLower, "limitation"):
		return core.KindLimitation
	case strings.Contains(headingLower, "obligation"):
		return core.KindProcedure
	}
	return core.KindGeneral
}

// Classifier assigns a Kind to a chunk using the two-stage policy: a
// keyword heuristic prior, optionally refined by an LLM for the three
// kinds whose misclassification is legally costly.
type Classifier struct {
	llm     airag.LLMProvider
	refine  bool
	logger  *slog.Logger
}

// NewClassifier creates a Classifier. llm may be nil when refine is
// false. When refine is true and llm is nil, Classify returns the
// heuristic prior unrefined.
func NewClassifier(llm airag.LLMProvider, refine bool) *Classifier {
	return &Classifier{
		llm:    llm,
		refine: refine,
		logger: slog.Default().With("component", "chunk-classifier"),
	}
}

// Classify returns the Kind for a chunk given its text and active
// section heading.
func (c *Classifier) Classify(ctx context.Context, text, heading string) (core.Kind, error) {
	prior := classifyHeuristic(text, heading)
	if !c.refine || c.llm == nil || !refinableKinds.Contains(prior) {
		return prior, nil
	}

	refined, err := c.llm.ClassifyChunk(ctx, text, heading)
	if err != nil {
		c.logger.Warn("llm classification refinement failed, keeping heuristic prior", "prior", prior.String(), "err", err)
		return prior, nil
	}
	if !refined.IsValid() {
		c.logger.Warn("llm returned out-of-enum kind, keeping heuristic prior", "prior", prior.String())
		return prior, nil
	}
	return refined, nil
}
