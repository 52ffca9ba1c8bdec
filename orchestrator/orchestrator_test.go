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
	"testing"

	"github.com/poiesic/guardrail/agent"
	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/airag/fake"
	"github.com/poiesic/guardrail/config"
	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/store"
	"github.com/poiesic/guardrail/store/badger"
)

// recordingWriter collects every event a turn emits, in order.
type recordingWriter struct {
	events []Event
}

func (w *recordingWriter) WriteEvent(e Event) error {
	w.events = append(w.events, e)
	return nil
}

func (w *recordingWriter) trailer() *Event {
	for i := len(w.events) - 1; i >= 0; i-- {
		if w.events[i].Type == EventTrailer || w.events[i].Type == EventError {
			return &w.events[i]
		}
	}
	return nil
}

func newTestOrchestrator(t *testing.T, provider airag.Provider) (*Orchestrator, store.Store, func()) {
	t.Helper()
	chunkStore, backend, err := badger.NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}

	cfg := config.New(
		config.WithEmbeddingDim(384),
		config.WithRetrievalDepths(8, 8, 4),
		config.WithThresholds(0.6, 0.6),
		config.WithFanoutLimit(2),
		config.WithRetryPolicy(0, 1),
		config.WithSessionBacklog(1),
		config.WithComposeSemaphore(4),
	)

	a, err := agent.New(cfg, chunkStore, provider)
	if err != nil {
		t.Fatalf("agent.New: %v", err)
	}

	o, err := New(cfg, a)
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}

	cleanup := func() {
		a.Release()
		chunkStore.Close()
		backend.Close()
	}
	return o, chunkStore, cleanup
}

func TestCreateSession_RequiresPolicyID(t *testing.T) {
	o, _, cleanup := newTestOrchestrator(t, fake.NewProvider())
	defer cleanup()

	if _, err := o.CreateSession(""); err != ErrPolicyIDRequired {
		t.Fatalf("expected ErrPolicyIDRequired, got %v", err)
	}
}

func TestAsk_SessionNotFound(t *testing.T) {
	o, _, cleanup := newTestOrchestrator(t, fake.NewProvider())
	defer cleanup()

	w := &recordingWriter{}
	err := o.Ask(context.Background(), "nonexistent", "p1", "is collision covered?", w)
	if err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAsk_RejectsCrossPolicyRequest(t *testing.T) {
	o, _, cleanup := newTestOrchestrator(t, fake.NewProvider())
	defer cleanup()

	session, err := o.CreateSession("p1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	w := &recordingWriter{}
	err = o.Ask(context.Background(), session.ID, "p2", "is collision covered?", w)
	if err != ErrPolicyMismatch {
		t.Fatalf("expected ErrPolicyMismatch, got %v", err)
	}
	if len(w.events) != 0 {
		t.Fatalf("expected no events emitted for a rejected cross-policy request, got %d", len(w.events))
	}
}

func TestAsk_StreamsTokensThenTrailer(t *testing.T) {
	o, _, cleanup := newTestOrchestrator(t, fake.NewProvider())
	defer cleanup()

	session, err := o.CreateSession("p1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	w := &recordingWriter{}
	if err := o.Ask(context.Background(), session.ID, "p1", "is collision covered?", w); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if len(w.events) < 2 {
		t.Fatalf("expected at least a token event and a trailer, got %d events", len(w.events))
	}
	trailer := w.trailer()
	if trailer == nil || trailer.Type != EventTrailer {
		t.Fatalf("expected a trailer event, got %+v", trailer)
	}
	if trailer.Verdict == nil {
		t.Fatal("expected trailer to carry a verdict")
	}
	if trailer.Verdict.Status != core.StatusUnknown {
		t.Fatalf("expected StatusUnknown for an empty policy store, got %v", trailer.Verdict.Status)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("expected a user turn and an assistant turn recorded, got %d", len(history))
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Fatalf("expected user then assistant, got %v then %v", history[0].Role, history[1].Role)
	}
}

func TestAsk_UngroundedFigureDowngradesVerdictToUnknown(t *testing.T) {
	llm := fake.NewLLMProvider()
	llm.EvaluateExclusionFunc = func(ctx context.Context, chunkText, item string) (airag.ExclusionVerdict, error) {
		return airag.ExclusionVerdict{Excluded: false, Confidence: 0.9, Reason: "no exclusion cue"}, nil
	}
	llm.EvaluateInclusionFunc = func(ctx context.Context, chunkText, item string) (airag.InclusionVerdict, error) {
		return airag.InclusionVerdict{Covered: true, Confidence: 0.9, Reason: "collision is covered"}, nil
	}
	llm.ComposeFunc = func(ctx context.Context, structuredContext string, w airag.TokenWriter) error {
		return w.WriteToken("Collision is covered, subject to a $999,999 deductible.")
	}
	provider := fake.NewProviderWithServices(fake.NewEmbedder(384), llm)

	o, chunkStore, cleanup := newTestOrchestrator(t, provider)
	defer cleanup()

	ctx := context.Background()
	text := "Collision repairs are covered under this policy."
	vec, err := provider.Embedder().EmbedOne(ctx, text)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if _, err := chunkStore.PutBatch(ctx, "p1", []*core.Chunk{
		{PolicyID: "p1", Text: text, Kind: core.KindInclusion, Position: 0, Embedding: vec},
	}); err != nil {
		t.Fatalf("PutBatch: %v", err)
	}

	session, err := o.CreateSession("p1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	w := &recordingWriter{}
	if err := o.Ask(ctx, session.ID, "p1", "is collision covered?", w); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	trailer := w.trailer()
	if trailer == nil || trailer.Verdict == nil {
		t.Fatal("expected a trailer with a verdict")
	}
	if trailer.Verdict.Status != core.StatusUnknown {
		t.Fatalf("expected the ungrounded $999,999 figure to downgrade the verdict to UNKNOWN, got %v", trailer.Verdict.Status)
	}
}
