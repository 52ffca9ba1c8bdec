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

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/core"
)

// EventType distinguishes the sentinel trailer event from ordinary
// token events in the query endpoint's line-delimited stream.
type EventType string

const (
	// EventToken carries one streamed composition token.
	EventToken EventType = "token"

	// EventTrailer is the sentinel event terminating a turn's stream,
	// carrying the structured coverage verdict.
	EventTrailer EventType = "trailer"

	// EventError terminates a turn's stream without a verdict.
	EventError EventType = "error"
)

// Event is one line of the query endpoint's stream.
type Event struct {
	Type    EventType    `json:"type"`
	Token   string       `json:"token,omitempty"`
	Verdict *core.Verdict `json:"verdict,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// EventWriter receives a turn's stream of events. Implementations
// backed by HTTP typically serialize each Event as one line of
// newline-delimited JSON.
type EventWriter interface {
	WriteEvent(Event) error
}

// tokenRelay adapts an EventWriter into the airag.TokenWriter the
// coverage agent streams tokens to, while also capturing the full
// composed text for the post-compose grounding check.
type tokenRelay struct {
	ctx context.Context
	w   EventWriter
	buf []byte
}

var _ airag.TokenWriter = (*tokenRelay)(nil)

func (r *tokenRelay) WriteToken(token string) error {
	r.buf = append(r.buf, token...)
	return r.w.WriteEvent(Event{Type: EventToken, Token: token})
}

func (r *tokenRelay) composedText() string {
	return string(r.buf)
}
