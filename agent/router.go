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


package agent

import "strings"

// Intent is the classified purpose of a user utterance.
type Intent int

const (
	IntentGeneral Intent = iota
	IntentCheckCoverage
	IntentExplainTerms
	IntentGetLimits
)

func (i Intent) String() string {
	switch i {
	case IntentCheckCoverage:
		return "CHECK_COVERAGE"
	case IntentExplainTerms:
		return "EXPLAIN_TERMS"
	case IntentGetLimits:
		return "GET_LIMITS"
	default:
		return "GENERAL"
	}
}

var coverageKeywords = []string{
	"covered", "cover", "does my policy", "am i covered", "is my",
	"exclusion", "excluded", "not covered", "what's not", "what isn't",
	"exception", "exempt", "limitation", "restricted",
	"included", "include", "what's covered", "what does my policy",
}

var explainKeywords = []string{"what is", "what does", "define", "mean", "explain"}

var limitKeywords = []string{"deductible", "limit", "cap", "how much", "payment"}

// standardItems are common coverage subjects the router recognizes by
// direct substring match, mirroring the cue-word style the chunk
// classifier uses for its heuristic prior.
var standardItems = []string{
	"engine", "transmission", "brakes", "suspension", "battery",
	"collision", "comprehensive", "liability", "towing",
	"medical", "hospitalization", "surgery", "prescription",
	"death benefit", "disability", "critical illness",
	"theft", "vandalism", "fire", "flood", "earthquake",
	"property damage", "bodily injury",
}

var scenarioKeywords = map[string][]string{
	"intentional damage":    {"intentional", "deliberately", "on purpose"},
	"fraud":                 {"fraud", "misrepresentation", "false statement"},
	"pre-existing condition": {"pre-existing", "prior condition"},
	"illegal activity":      {"illegal", "criminal", "unlawful"},
	"war":                   {"war", "terrorism", "civil unrest"},
}

var stopWords = map[string]struct{}{
	"am": {}, "i": {}, "is": {}, "my": {}, "the": {}, "a": {}, "an": {},
	"if": {}, "to": {}, "for": {}, "in": {}, "on": {}, "it": {},
	"be": {}, "do": {}, "does": {}, "will": {}, "would": {}, "can": {},
	"could": {}, "what": {}, "how": {}, "when": {}, "where": {}, "why": {},
	"covered": {}, "cover": {}, "coverage": {}, "policy": {}, "insurance": {},
}

// route classifies utterance into an Intent and extracts the candidate
// items to evaluate. Routing is a pure heuristic — no LLM call — so
// the five LLM-provider operations stay exactly as declared.
func route(utterance string) (Intent, []string) {
	lower := strings.ToLower(utterance)

	var intent Intent
	switch {
	case containsAny(lower, coverageKeywords):
		intent = IntentCheckCoverage
	case containsAny(lower, explainKeywords):
		intent = IntentExplainTerms
	case containsAny(lower, limitKeywords):
		intent = IntentGetLimits
	default:
		intent = IntentGeneral
	}

	items := extractItems(lower)
	return intent, items
}

func extractItems(lower string) []string {
	var items []string

	for _, item := range standardItems {
		if strings.Contains(lower, item) {
			items = append(items, item)
		}
	}

	for scenario, keywords := range scenarioKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				items = append(items, scenario)
				break
			}
		}
	}

	if len(items) == 0 {
		items = extractFallbackNouns(lower)
	}

	return dedupe(items)
}

// extractFallbackNouns takes the first few non-stop-word tokens longer
// than three letters as a last resort when no recognized item or
// scenario matched.
func extractFallbackNouns(lower string) []string {
	var words []string
	for _, w := range strings.Fields(lower) {
		w = strings.Trim(w, ".,?!;:\"'")
		if len(w) <= 3 {
			continue
		}
		if _, isStop := stopWords[w]; isStop {
			continue
		}
		if !isAlpha(w) {
			continue
		}
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}
	return words
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
