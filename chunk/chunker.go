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
	"strings"

	"github.com/poiesic/guardrail/config"
	"github.com/poiesic/guardrail/core"
)

// Chunker splits text blocks into retrieval-sized chunks. A chunk
// never spans more than one page; the page boundary carried by each
// core.TextBlock is a hard split point.
type Chunker struct {
	size    int
	overlap float64
}

// New creates a Chunker from the chunk-size and overlap tunables in cfg.
func New(cfg *config.Config) *Chunker {
	return &Chunker{size: cfg.ChunkSize, overlap: cfg.ChunkOverlap}
}

// Split turns blocks into an ordered slice of unclassified chunks
// (Kind is core.KindUnspecified; a Classifier assigns the real kind).
// Position is assigned in document order, starting at 0.
func (c *Chunker) Split(blocks []core.TextBlock, policyID string) []*core.Chunk {
	var chunks []*core.Chunk
	position := 0
	currentSection := ""

	for _, block := range blocks {
		if block.SectionHint != "" {
			currentSection = block.SectionHint
		}

		body, lastHeading := stripHeadings(block.Text)
		if lastHeading != "" {
			currentSection = lastHeading
		}

		for _, piece := range c.splitToSize(body) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			chunks = append(chunks, &core.Chunk{
				PolicyID:     policyID,
				Text:         piece,
				Kind:         core.KindUnspecified,
				PageNumber:   block.PageNumber,
				SectionTitle: currentSection,
				Position:     position,
			})
			position++
		}
	}
	return chunks
}

// stripHeadings removes heading lines from text and returns the body
// plus the last heading seen, which becomes the active section title.
func stripHeadings(text string) (body, lastHeading string) {
	lines := strings.Split(text, "\n")
	bodyLines := make([]string, 0, len(lines))
	for _, line := range lines {
		if isHeadingLine(line) {
			lastHeading = strings.TrimSpace(line)
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	return strings.Join(bodyLines, "\n"), lastHeading
}

// splitToSize packs paragraphs into chunks up to c.size characters,
// falling back to sentence splitting and then hard cuts for
// oversized paragraphs, and seeding each new chunk with an overlap
// tail from the one before it.
func (c *Chunker) splitToSize(text string) []string {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var result []string
	var builder strings.Builder

	flush := func() {
		if builder.Len() == 0 {
			return
		}
		chunkText := builder.String()
		result = append(result, chunkText)
		builder.Reset()

		r := []rune(chunkText)
		overlapRunes := min(int(float64(len(r))*c.overlap), len(r))
		if overlapRunes > 0 {
			builder.WriteString(string(r[len(r)-overlapRunes:]))
			builder.WriteString(" ")
		}
	}

	appendPiece := func(piece string) {
		if builder.Len() > 0 && builder.Len()+len(piece) > c.size {
			flush()
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(piece)
	}

	for _, para := range paragraphs {
		if builder.Len() > 0 && builder.Len()+len(para) > c.size {
			flush()
		}
		if len(para) > c.size {
			for _, sentence := range splitSentences(para) {
				if len(sentence) > c.size {
					for _, cut := range c.hardCut(sentence) {
						appendPiece(cut)
					}
					continue
				}
				appendPiece(sentence)
			}
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(para)
	}
	flush()
	return result
}

// hardCut splits s into size-limited pieces, preferring to break on a
// space within the back half of the window so words are not severed.
func (c *Chunker) hardCut(s string) []string {
	var out []string
	runes := []rune(s)
	for len(runes) > 0 {
		if len(runes) <= c.size {
			out = append(out, strings.TrimSpace(string(runes)))
			break
		}
		cut := c.size
		for i := cut; i > cut/2; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
	}
	return out
}
