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
	"fmt"

	"github.com/poiesic/guardrail/core"
)

// Strategy extracts text blocks from document bytes for one MIME kind.
// Implementations backed by a real PDF text layer or OCR engine live
// outside this package and are injected via WithStrategy.
type Strategy interface {
	// Extract returns the ordered text blocks found in data, or an
	// ExtractionFailedError if no usable text could be produced.
	Extract(data []byte) ([]core.TextBlock, error)
}

// Extractor dispatches ExtractBlocks to the Strategy registered for a
// document's declared MIME kind.
type Extractor struct {
	strategies map[string]Strategy
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategy registers a Strategy for a MIME kind, overriding any
// built-in default for that kind.
func WithStrategy(mime string, s Strategy) Option {
	return func(e *Extractor) { e.strategies[mime] = s }
}

// New creates an Extractor. The text/plain and text/markdown fast path
// is always registered; callers add native-text and OCR strategies for
// other MIME kinds via WithStrategy.
func New(opts ...Option) *Extractor {
	e := &Extractor{strategies: make(map[string]Strategy)}
	plain := &plainTextStrategy{}
	e.strategies["text/plain"] = plain
	e.strategies["text/markdown"] = plain
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractBlocks extracts an ordered sequence of text blocks from data,
// declared as the given MIME kind. Missing pages within an otherwise
// successful extraction are holes, not fatal; a MIME kind with no
// registered strategy is fatal.
func (e *Extractor) ExtractBlocks(data []byte, mime string) ([]core.TextBlock, error) {
	strategy, ok := e.strategies[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoStrategy, mime)
	}
	return strategy.Extract(data)
}
