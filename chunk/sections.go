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
	"regexp"
	"strings"
)

var (
	allCapsHeadingRe = regexp.MustCompile(`^[A-Z][A-Z0-9 ,\-:]{1,59}$`)
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\s+[A-Z]`)
	keywordHeadingRe  = regexp.MustCompile(`(?i)^(EXCLUSIONS?|COVERAGE|DEFINITIONS?|LIMITATIONS?|OBLIGATIONS?)\b`)

	paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)
	sentenceSplitRe  = regexp.MustCompile(`([.!?])\s+[A-Z]`)
)

// isHeadingLine reports whether line looks like a section heading,
// per the three cues named in the chunker's contract.
func isHeadingLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 80 {
		return false
	}
	if allCapsHeadingRe.MatchString(line) && strings.ToUpper(line) == line && hasLetter(line) {
		return true
	}
	if numberedHeadingRe.MatchString(line) {
		return true
	}
	if keywordHeadingRe.MatchString(line) {
		return true
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			return true
		}
	}
	return false
}

// splitParagraphs splits text on blank lines.
func splitParagraphs(text string) []string {
	raw := paragraphSplitRe.Split(text, -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences splits a paragraph into sentences, keeping the
// terminal punctuation attached to the preceding sentence.
func splitSentences(text string) []string {
	idx := sentenceSplitRe.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		if s := strings.TrimSpace(text); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(idx)+1)
	start := 0
	for _, loc := range idx {
		cut := loc[0] + 1 // keep the punctuation, split after it
		s := strings.TrimSpace(text[start:cut])
		if s != "" {
			out = append(out, s)
		}
		start = loc[1] - 1 // the match ends on the next sentence's capital
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
