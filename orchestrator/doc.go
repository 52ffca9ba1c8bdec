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


// Package orchestrator binds chat sessions to the coverage guardrail
// agent. It holds per-session {session_id, policy_id, history} state
// in memory, rejects any turn whose caller-claimed policy_id disagrees
// with the session's bound policy, and streams the agent's composed
// answer back as a sequence of events terminated by a trailer carrying
// the structured verdict.
//
// Session and message persistence is an external collaborator's job;
// the history this package keeps is a bounded ring for prompt-context
// replay only, and it is never consulted by the guardrail's reasoning.
package orchestrator
