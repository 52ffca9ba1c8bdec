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
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/poiesic/guardrail/agent"
	"github.com/poiesic/guardrail/config"
	"github.com/poiesic/guardrail/core"
)

// Orchestrator binds chat sessions to a single shared coverage Agent.
// The agent itself is safe for concurrent use across sessions (its
// fan-out pool and compose semaphore are its own); Orchestrator adds
// session binding, cross-policy rejection, per-session backpressure,
// and transcript replay on top of it.
type Orchestrator struct {
	agent *agent.Agent
	cfg   *config.Config

	mu       sync.RWMutex
	sessions map[string]*Session

	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// New creates an Orchestrator over a.
func New(cfg *config.Config, a *agent.Agent, opts ...Option) (*Orchestrator, error) {
	if a == nil {
		return nil, ErrAgentRequired
	}
	o := &Orchestrator{
		agent:    a,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// CreateSession binds a new session_id to policyID and holds it in
// memory for the orchestrator's lifetime.
func (o *Orchestrator) CreateSession(policyID string) (*Session, error) {
	if policyID == "" {
		return nil, ErrPolicyIDRequired
	}
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	backlog := 1
	if o.cfg != nil {
		backlog = o.cfg.SessionBacklog
	}
	s := newSession(id, policyID, backlog)

	o.mu.Lock()
	o.sessions[id] = s
	o.mu.Unlock()
	return s, nil
}

// Session looks up a previously created session by id.
func (o *Orchestrator) Session(sessionID string) (*Session, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.sessions[sessionID]
	return s, ok
}

// Ask runs one turn of sessionID, rejecting it outright if
// claimedPolicyID disagrees with the session's bound policy. The
// composer's tokens stream to w as EventToken events; the turn always
// ends with exactly one EventTrailer (carrying the verdict) or one
// EventError (carrying no verdict).
func (o *Orchestrator) Ask(ctx context.Context, sessionID, claimedPolicyID, utterance string, w EventWriter) error {
	if utterance == "" {
		return ErrUtteranceRequired
	}

	session, ok := o.Session(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	if claimedPolicyID != "" && claimedPolicyID != session.PolicyID {
		o.logger.Warn("orchestrator: rejected cross-policy request",
			"session_id", sessionID, "session_policy", session.PolicyID, "claimed_policy", claimedPolicyID)
		return ErrPolicyMismatch
	}

	select {
	case session.turnSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-session.turnSem }()

	session.appendTurn(RoleUser, utterance)

	relay := &tokenRelay{ctx: ctx, w: w}
	verdict, err := o.agent.Run(ctx, session.PolicyID, utterance, relay)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeErr := w.WriteEvent(Event{Type: EventError, Error: ErrTurnAborted.Error()})
			if writeErr != nil {
				return writeErr
			}
			return ErrTurnAborted
		}
		if writeErr := w.WriteEvent(Event{Type: EventError, Error: err.Error()}); writeErr != nil {
			return writeErr
		}
		return err
	}

	if !isGrounded(relay.composedText(), verdict) {
		o.logger.Warn("orchestrator: composed answer cites a figure absent from its grounding, downgrading to UNKNOWN",
			"session_id", sessionID, "policy_id", session.PolicyID, "item", verdict.Item)
		verdict.Status = core.StatusUnknown
	}

	session.appendTurn(RoleAssistant, relay.composedText())
	return w.WriteEvent(Event{Type: EventTrailer, Verdict: verdict})
}

func newSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
