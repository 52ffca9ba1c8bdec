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


// Package openai implements airag.Provider using OpenAI-compatible
// services reached through langchaingo. It speaks to any endpoint
// exposing the OpenAI chat and embeddings wire format, including
// Ollama, LocalAI, and vLLM deployments.
//
// # Usage
//
//	cfg := airag.NewConfig(
//	    airag.WithHost("http://localhost:11434/v1"),
//	    airag.WithEmbeddingModel("text-embedding-3-small"),
//	    airag.WithEmbeddingDim(1536),
//	)
//
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedOne(ctx, "policy text")
//	verdict, err := provider.LLMProvider().EvaluateExclusion(ctx, chunkText, "turbo")
package openai
