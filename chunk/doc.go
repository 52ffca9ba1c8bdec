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


// Package chunk splits extracted text blocks into retrieval-sized
// chunks and assigns each a Kind.
//
// Splitting prefers, in order, a section break, a paragraph break, a
// sentence break, and finally a hard character cut — never crossing a
// page boundary. Classification runs a keyword heuristic first and,
// when configured, asks an airag.LLMProvider to confirm or override
// the prior for the three kinds whose misclassification is costly:
// EXCLUSION, INCLUSION, and LIMITATION.
package chunk
