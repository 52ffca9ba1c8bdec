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


// Package fake provides deterministic test doubles for airag.Embedder
// and airag.LLMProvider, for use in unit tests that must not reach a
// network.
//
// # Usage in Tests
//
//	provider := fake.NewProvider()
//	vec, err := provider.Embedder().EmbedOne(ctx, "exclusion text")
//
//	embedder := fake.NewEmbedder(384)
//	embedder.EmbedOneFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//	n := embedder.CallCount()
package fake
