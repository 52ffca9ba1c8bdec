package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/store"
)

func TestPutBatch_AssignsIDsInOrder(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	chunks := []*core.Chunk{
		{PolicyID: "p1", Text: "first", Position: 0, Embedding: []float32{1, 0, 0}},
		{PolicyID: "p1", Text: "second", Position: 1, Embedding: []float32{0, 1, 0}},
	}

	ids, err := chunkStore.PutBatch(ctx, "p1", chunks)
	if err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 ids, got %d", len(ids))
	}
	if ids[0] == 0 || ids[1] == 0 {
		t.Fatal("Expected non-zero ids")
	}
	if ids[0] == ids[1] {
		t.Fatal("Expected distinct ids")
	}
}

func TestPutBatch_RejectsPolicyMismatch(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	chunks := []*core.Chunk{
		{PolicyID: "wrong-policy", Text: "oops", Position: 0, Embedding: []float32{1, 0, 0}},
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected PutBatch to panic on policy isolation violation")
		}
		panicErr, ok := r.(error)
		if !ok || !errors.Is(panicErr, store.ErrPolicyIsolationViolation) {
			t.Fatalf("Expected panic value wrapping ErrPolicyIsolationViolation, got %v", r)
		}
	}()

	chunkStore.PutBatch(ctx, "p1", chunks)
}

func TestFetch_RoundTrips(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	chunks := []*core.Chunk{
		{PolicyID: "p1", Text: "hello world", Kind: core.KindExclusion, PageNumber: 3, SectionTitle: "EXCLUSIONS", Position: 0, Embedding: []float32{1, 0, 0}},
	}
	ids, err := chunkStore.PutBatch(ctx, "p1", chunks)
	if err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	got, err := chunkStore.Fetch(ctx, ids[0])
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.Text != "hello world" {
		t.Fatalf("Expected text 'hello world', got %q", got.Text)
	}
	if got.Kind != core.KindExclusion {
		t.Fatalf("Expected KindExclusion, got %v", got.Kind)
	}
	if got.SectionTitle != "EXCLUSIONS" {
		t.Fatalf("Expected section title EXCLUSIONS, got %q", got.SectionTitle)
	}
}

func TestFetch_NotFound(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	_, err = chunkStore.Fetch(context.Background(), core.ID(999))
	if err != store.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeletePolicy_RemovesOnlyThatPolicy(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	p1ids, err := chunkStore.PutBatch(ctx, "p1", []*core.Chunk{
		{PolicyID: "p1", Text: "p1 chunk", Position: 0, Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("PutBatch p1 failed: %v", err)
	}
	p2ids, err := chunkStore.PutBatch(ctx, "p2", []*core.Chunk{
		{PolicyID: "p2", Text: "p2 chunk", Position: 0, Embedding: []float32{0, 1, 0}},
	})
	if err != nil {
		t.Fatalf("PutBatch p2 failed: %v", err)
	}

	if err := chunkStore.DeletePolicy(ctx, "p1"); err != nil {
		t.Fatalf("DeletePolicy failed: %v", err)
	}

	if _, err := chunkStore.Fetch(ctx, p1ids[0]); err != store.ErrNotFound {
		t.Fatalf("Expected p1 chunk deleted, got err=%v", err)
	}
	if _, err := chunkStore.Fetch(ctx, p2ids[0]); err != nil {
		t.Fatalf("Expected p2 chunk to survive, got err=%v", err)
	}

	count, err := chunkStore.Count(ctx, "p1", nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 chunks remaining for p1, got %d", count)
	}
}

func TestCount_FiltersByKind(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = chunkStore.PutBatch(ctx, "p1", []*core.Chunk{
		{PolicyID: "p1", Text: "a", Kind: core.KindExclusion, Position: 0, Embedding: []float32{1, 0, 0}},
		{PolicyID: "p1", Text: "b", Kind: core.KindInclusion, Position: 1, Embedding: []float32{0, 1, 0}},
		{PolicyID: "p1", Text: "c", Kind: core.KindExclusion, Position: 2, Embedding: []float32{0, 0, 1}},
	})
	if err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	total, err := chunkStore.Count(ctx, "p1", nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("Expected 3 total, got %d", total)
	}

	excl, err := chunkStore.Count(ctx, "p1", core.NewKindSet(core.KindExclusion))
	if err != nil {
		t.Fatalf("Count filtered failed: %v", err)
	}
	if excl != 2 {
		t.Fatalf("Expected 2 exclusion chunks, got %d", excl)
	}
}

func TestSimilar_RanksByCosineAndRespectsK(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = chunkStore.PutBatch(ctx, "p1", []*core.Chunk{
		{PolicyID: "p1", Text: "exact match", Position: 0, Embedding: []float32{1, 0, 0}},
		{PolicyID: "p1", Text: "orthogonal", Position: 1, Embedding: []float32{0, 1, 0}},
		{PolicyID: "p1", Text: "opposite", Position: 2, Embedding: []float32{-1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	results, err := chunkStore.Similar(ctx, "p1", []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Similar failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.Text != "exact match" {
		t.Fatalf("Expected 'exact match' first, got %q", results[0].Chunk.Text)
	}
	if results[0].Score <= results[1].Score {
		t.Fatal("Expected descending score order")
	}
	// Cosine of identical unit vectors is 1, mapped to (1+1)/2 = 1.0.
	if results[0].Score < 0.99 {
		t.Fatalf("Expected near-1.0 score for exact match, got %f", results[0].Score)
	}
}

func TestSimilar_EnforcesPolicyIsolation(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = chunkStore.PutBatch(ctx, "p1", []*core.Chunk{
		{PolicyID: "p1", Text: "p1 text", Position: 0, Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("PutBatch p1 failed: %v", err)
	}
	_, err = chunkStore.PutBatch(ctx, "p2", []*core.Chunk{
		{PolicyID: "p2", Text: "p2 text", Position: 0, Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("PutBatch p2 failed: %v", err)
	}

	results, err := chunkStore.Similar(ctx, "p1", []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Similar failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result scoped to p1, got %d", len(results))
	}
	if results[0].Chunk.Text != "p1 text" {
		t.Fatalf("Expected p1 text only, got %q", results[0].Chunk.Text)
	}
}

func TestSimilar_TiesBreakByPosition(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = chunkStore.PutBatch(ctx, "p1", []*core.Chunk{
		{PolicyID: "p1", Text: "later", Position: 5, Embedding: []float32{1, 0, 0}},
		{PolicyID: "p1", Text: "earlier", Position: 1, Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	results, err := chunkStore.Similar(ctx, "p1", []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Similar failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.Text != "earlier" {
		t.Fatalf("Expected 'earlier' (lower position) to win the tie, got %q", results[0].Chunk.Text)
	}
}

func TestSimilar_DimensionMismatchErrorsNotPanics(t *testing.T) {
	chunkStore, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { chunkStore.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = chunkStore.PutBatch(ctx, "p1", []*core.Chunk{
		{PolicyID: "p1", Text: "mismatched", Position: 0, Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	_, err = chunkStore.Similar(ctx, "p1", []float32{1, 0}, 10, nil)
	if err == nil {
		t.Fatal("Expected dimension mismatch error")
	}
	if !errors.Is(err, store.ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}
}
