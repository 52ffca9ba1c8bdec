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


package orchestrator

import "errors"

var (
	// ErrAgentRequired is returned by New when no coverage agent is supplied.
	ErrAgentRequired = errors.New("orchestrator: coverage agent is required")

	// ErrPolicyIDRequired is returned when a session is created without a policy_id.
	ErrPolicyIDRequired = errors.New("orchestrator: policy_id is required to create a session")

	// ErrSessionNotFound is returned when a session_id has no bound session.
	ErrSessionNotFound = errors.New("orchestrator: session not found")

	// ErrPolicyMismatch is returned when a caller's claimed policy_id
	// disagrees with the session's bound policy_id. No cross-policy
	// answering is ever permitted, regardless of caller intent.
	ErrPolicyMismatch = errors.New("orchestrator: claimed policy_id does not match the session's bound policy_id")

	// ErrUtteranceRequired is returned when Ask is called with an empty utterance.
	ErrUtteranceRequired = errors.New("orchestrator: utterance is required")

	// ErrTurnAborted is returned when a turn's context is cancelled
	// mid-stream. Partial tokens may already have reached the caller;
	// the caller must be told the turn produced no verdict.
	ErrTurnAborted = errors.New("orchestrator: turn aborted before a verdict was produced")
)
