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

import (
	"sync"
	"time"
)

// historyLimit bounds the in-memory transcript ring kept per session.
// It mirrors the "last 10 messages" window the source chat service used
// for prompt-context management; this orchestrator's guardrail never
// reads history, so the limit exists only to bound memory for replay.
const historyLimit = 10

// Role distinguishes a turn's speaker for transcript replay.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a session's replay transcript.
type Turn struct {
	Role    Role
	Content string
	At      time.Time
}

// Session holds one chat session's bound policy and in-memory history.
// Its policy_id is immutable for the session's lifetime: an
// orchestrator never reassigns a session to a different policy.
type Session struct {
	ID       string
	PolicyID string

	mu      sync.Mutex
	history []Turn
	turnSem chan struct{}
}

// newSession creates a session bound to policyID with a bounded
// in-flight turn count of backlog (the default of 1 makes a second
// concurrent turn wait for the first to finish streaming).
func newSession(id, policyID string, backlog int) *Session {
	if backlog <= 0 {
		backlog = 1
	}
	return &Session{
		ID:       id,
		PolicyID: policyID,
		turnSem:  make(chan struct{}, backlog),
	}
}

// appendTurn records content under role, trimming the oldest entries
// once historyLimit is exceeded.
func (s *Session) appendTurn(role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, Turn{Role: role, Content: content, At: time.Now()})
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

// History returns a copy of the session's replay transcript, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}
