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


package orchestrator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/guardrail/core"
)

var amountPattern = regexp.MustCompile(`\$[0-9][0-9,]*(\.[0-9]+)?`)

const amountEpsilon = 0.01

// extractAmounts pulls every dollar figure out of text as a float64,
// ignoring thousands separators.
func extractAmounts(text string) []float64 {
	matches := amountPattern.FindAllString(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		clean := strings.NewReplacer("$", "", ",", "").Replace(m)
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// groundedAmounts collects every dollar figure the guardrail actually
// retrieved: the cited chunks' text and the verdict's own financials.
func groundedAmounts(verdict *core.Verdict) []float64 {
	var out []float64
	for _, c := range verdict.Citations {
		out = append(out, extractAmounts(c.Quote)...)
	}
	if verdict.Financials != nil {
		if verdict.Financials.Deductible != nil {
			out = append(out, *verdict.Financials.Deductible)
		}
		if verdict.Financials.Cap != nil {
			out = append(out, *verdict.Financials.Cap)
		}
	}
	return out
}

func amountsClose(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < amountEpsilon
}

// isGrounded reports whether every dollar figure the composer wrote
// into composedText traces back to a cited chunk or the verdict's own
// financials. A figure the composer invented — one absent from
// everything the guardrail retrieved — is a grounding failure.
func isGrounded(composedText string, verdict *core.Verdict) bool {
	composed := extractAmounts(composedText)
	if len(composed) == 0 {
		return true
	}
	grounded := groundedAmounts(verdict)
	for _, c := range composed {
		found := false
		for _, g := range grounded {
			if amountsClose(c, g) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
