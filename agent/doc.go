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


// Package agent implements the coverage guardrail: a fixed-order
// state machine that must never answer COVERED when an exclusion
// matches, even when inclusion text also matches.
//
// The state machine is a plain Go enum and a map[state]stepFunc
// dispatch table walked by Run, not a graph library: the transition
// order (ROUTE -> EXCLUSION_PROBE -> INCLUSION_PROBE ->
// FINANCIAL_PROBE -> COMPOSE, short-circuiting to COMPOSE the instant
// an item is excluded) is a legal invariant, not a topology that
// needs to be configurable at runtime.
package agent
