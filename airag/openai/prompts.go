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
	"fmt"
	"strings"

	"github.com/poiesic/guardrail/core"
)

const classifySchema = `{
  "type": "object",
  "properties": {
    "kind": {"type": "string"}
  },
  "required": ["kind"],
  "additionalProperties": false
}`

const classifyPromptTemplate = `Classify the following policy document excerpt into exactly one of
these categories: %s.

Output ONLY valid JSON conforming to this schema, nothing else:
%s

Rules:
- EXCLUSION: states something the policy does not cover.
- INCLUSION: states something the policy covers.
- DEFINITION: defines a term used elsewhere in the policy.
- LIMITATION: states a deductible, cap, sub-limit, or other numeric constraint.
- PROCEDURE: describes how to file a claim or what to do after a loss.
- GENERAL: none of the above applies.

Section heading: %s
Excerpt:
%s`

func classifyKinds() string {
	all := []string{
		core.KindExclusion.String(),
		core.KindInclusion.String(),
		core.KindDefinition.String(),
		core.KindLimitation.String(),
		core.KindProcedure.String(),
		core.KindGeneral.String(),
	}
	return strings.Join(all, ", ")
}

func buildClassifyPrompt(text, heading string) string {
	return fmt.Sprintf(classifyPromptTemplate, classifyKinds(), classifySchema, heading, text)
}

const exclusionSchema = `{
  "type": "object",
  "properties": {
    "excluded": {"type": "boolean"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "reason": {"type": "string"}
  },
  "required": ["excluded", "confidence", "reason"],
  "additionalProperties": false
}`

const exclusionPromptTemplate = `You are checking whether a policy excerpt excludes coverage for a
specific item. Output ONLY valid JSON conforming to this schema:
%s

Item in question: %q

Policy excerpt:
%s

Rules:
- excluded is true only if the excerpt explicitly states the item is not covered.
- confidence is your certainty in [0,1]; use low confidence when the excerpt is ambiguous or silent.
- reason is one sentence citing the relevant clause.`

func buildExclusionPrompt(chunkText, item string) string {
	return fmt.Sprintf(exclusionPromptTemplate, exclusionSchema, item, chunkText)
}

const inclusionSchema = `{
  "type": "object",
  "properties": {
    "covered": {"type": "boolean"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "reason": {"type": "string"}
  },
  "required": ["covered", "confidence", "reason"],
  "additionalProperties": false
}`

const inclusionPromptTemplate = `You are checking whether a policy excerpt affirmatively covers a
specific item. Output ONLY valid JSON conforming to this schema:
%s

Item in question: %q

Policy excerpt:
%s

Rules:
- covered is true only if the excerpt explicitly states the item is covered.
- confidence is your certainty in [0,1]; use low confidence when the excerpt is ambiguous or silent.
- reason is one sentence citing the relevant clause.`

func buildInclusionPrompt(chunkText, item string) string {
	return fmt.Sprintf(inclusionPromptTemplate, inclusionSchema, item, chunkText)
}

const financialSchema = `{
  "type": "object",
  "properties": {
    "deductible": {"type": ["number", "null"]},
    "cap": {"type": ["number", "null"]},
    "conditions": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["deductible", "cap", "conditions"],
  "additionalProperties": false
}`

const financialPromptTemplate = `Extract any deductible amount, coverage cap, and conditions from the
following policy excerpt. Output ONLY valid JSON conforming to this
schema:
%s

Rules:
- deductible and cap are numbers in the policy's stated currency, or null if none is named.
- conditions is a list of short phrases describing any qualifying conditions (e.g. "subject to annual inspection"). Empty list if none.
- Do not invent figures; only report amounts explicitly present in the excerpt.

Policy excerpt:
%s`

func buildFinancialPrompt(chunkText string) string {
	return fmt.Sprintf(financialPromptTemplate, financialSchema, chunkText)
}

const composePromptTemplate = `You are composing the final answer for a policyholder asking about
coverage. Use only the structured findings below; do not introduce
facts that are not present in them. Cite page numbers when the
findings include them. Keep the answer concise and direct.

Structured findings:
%s`

func buildComposePrompt(structuredContext string) string {
	return fmt.Sprintf(composePromptTemplate, structuredContext)
}
