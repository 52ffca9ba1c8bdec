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


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - PolicyID must not be empty
//   - Text must not be empty
//   - Kind must be one of the closed enum values
//   - PageNumber must be positive
//
// NOT validated (populated by later pipeline stages):
//   - Embedding (may be empty until the embedder runs)
//   - Id (0 is valid before a store sequence assigns one)
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if c.PolicyID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyPolicyID)
	}
	if c.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}
	if !c.Kind.IsValid() {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidKind)
	}
	if c.PageNumber <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidPageNumber)
	}
	return nil
}

// ValidateEmbeddingDimension checks that vec has exactly dim elements.
// Callers treat a mismatch as the FATAL EmbeddingDimensionMismatch error.
func ValidateEmbeddingDimension(vec []float32, dim int) bool {
	return len(vec) == dim
}
