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


package extract

import (
	"strings"

	"github.com/poiesic/guardrail/core"
)

// plainTextStrategy implements the text/plain and text/markdown fast
// path: the whole document is page 1 unless it carries form-feed
// characters, in which case each form-feed-delimited segment becomes
// its own page.
type plainTextStrategy struct{}

func (plainTextStrategy) Extract(data []byte) ([]core.TextBlock, error) {
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionFailedError{Cause: ErrEmptyDocument}
	}

	pages := strings.Split(text, "\f")
	blocks := make([]core.TextBlock, 0, len(pages))
	for i, page := range pages {
		trimmed := strings.TrimSpace(page)
		if trimmed == "" {
			continue
		}
		blocks = append(blocks, core.TextBlock{
			Text:       trimmed,
			PageNumber: i + 1,
		})
	}
	if len(blocks) == 0 {
		return nil, &ExtractionFailedError{Cause: ErrEmptyDocument}
	}
	return blocks, nil
}
