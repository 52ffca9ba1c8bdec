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


// Package airag defines the two capabilities the coverage guardrail
// depends on: embedding and LLM reasoning. It follows the dependency
// inversion principle, allowing the agent and orchestrator packages to
// depend on abstractions rather than on any one backend.
//
// # Implementation Packages
//
//   - airag/openai: production implementation backed by langchaingo,
//     speaking to any OpenAI-compatible embedding and chat endpoint.
//   - airag/fake: deterministic test doubles with no network calls.
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.)
// return INTERFACE types to enforce abstraction. Test utility
// constructors (fake.NewEmbedder, fake.NewLLMProvider) return CONCRETE
// types so tests can inject custom behavior and inspect call counts.
package airag
