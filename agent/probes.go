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


package agent

import (
	"context"
	"sync"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/core"
)

// probeHit is a single chunk that crossed an evaluation threshold,
// carrying enough to build a citation and break ties.
type probeHit struct {
	chunk      *core.Chunk
	confidence float32
	reason     string
}

// runExclusionProbe retrieves chunks tagged EXCLUSION or LIMITATION
// and asks the LLM provider whether each one excludes item. The first
// hit crossing tauExcl is not necessarily the answer: every candidate
// is evaluated, then the winner is chosen by confidence descending,
// position ascending, so retrieval order never silently decides the
// verdict.
func (a *Agent) runExclusionProbe(ctx context.Context, policyID, item string, query []float32) (*probeHit, []*core.Chunk, error) {
	kindFilter := core.NewKindSet(core.KindExclusion, core.KindLimitation)
	scored, err := a.store.Similar(ctx, policyID, query, a.cfg.KExclusion, kindFilter)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]*core.Chunk, len(scored))
	for i, s := range scored {
		candidates[i] = s.Chunk
	}

	hits, err := a.fanEvaluate(ctx, candidates, func(ctx context.Context, c *core.Chunk) (*probeHit, error) {
		var verdict airag.ExclusionVerdict
		err := retryWithBackoff(ctx, func() error {
			v, err := a.provider.LLMProvider().EvaluateExclusion(ctx, c.Text, item)
			verdict = v
			return err
		}, a.cfg.RetryMaxTries, a.cfg.RetryBaseDelay)
		if err != nil {
			return nil, err
		}
		if !verdict.Excluded {
			return nil, nil
		}
		return &probeHit{chunk: c, confidence: verdict.Confidence, reason: verdict.Reason}, nil
	})
	if err != nil {
		return nil, candidates, err
	}

	winner := bestHit(hits, a.cfg.TauExclusion)
	return winner, candidates, nil
}

// runInclusionProbe is the symmetric protocol over INCLUSION,
// DEFINITION, and GENERAL chunks.
func (a *Agent) runInclusionProbe(ctx context.Context, policyID, item string, query []float32) (*probeHit, []*core.Chunk, error) {
	kindFilter := core.NewKindSet(core.KindInclusion, core.KindDefinition, core.KindGeneral)
	scored, err := a.store.Similar(ctx, policyID, query, a.cfg.KInclusion, kindFilter)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]*core.Chunk, len(scored))
	for i, s := range scored {
		candidates[i] = s.Chunk
	}

	hits, err := a.fanEvaluate(ctx, candidates, func(ctx context.Context, c *core.Chunk) (*probeHit, error) {
		var verdict airag.InclusionVerdict
		err := retryWithBackoff(ctx, func() error {
			v, err := a.provider.LLMProvider().EvaluateInclusion(ctx, c.Text, item)
			verdict = v
			return err
		}, a.cfg.RetryMaxTries, a.cfg.RetryBaseDelay)
		if err != nil {
			return nil, err
		}
		if !verdict.Covered {
			return nil, nil
		}
		return &probeHit{chunk: c, confidence: verdict.Confidence, reason: verdict.Reason}, nil
	})
	if err != nil {
		return nil, candidates, err
	}

	winner := bestHit(hits, a.cfg.TauInclusion)
	return winner, candidates, nil
}

// financialResult pairs a chunk with the figures extracted from it.
type financialResult struct {
	chunk   *core.Chunk
	extract airag.FinancialExtract
}

// runFinancialProbe retrieves LIMITATION chunks and extracts
// deductible/cap/condition figures from each. No result from this
// step may overturn a NOT_COVERED verdict already reached.
func (a *Agent) runFinancialProbe(ctx context.Context, policyID string, query []float32) ([]financialResult, error) {
	kindFilter := core.NewKindSet(core.KindLimitation)
	scored, err := a.store.Similar(ctx, policyID, query, a.cfg.KFinancial, kindFilter)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var results []financialResult
	var wg sync.WaitGroup
	errs := make([]error, len(scored))

	for i, s := range scored {
		i, chunk := i, s.Chunk
		wg.Add(1)
		task := func() {
			defer wg.Done()
			var extract airag.FinancialExtract
			err := retryWithBackoff(ctx, func() error {
				e, err := a.provider.LLMProvider().ExtractFinancials(ctx, chunk.Text)
				extract = e
				return err
			}, a.cfg.RetryMaxTries, a.cfg.RetryBaseDelay)
			if err != nil {
				errs[i] = err
				return
			}
			mu.Lock()
			results = append(results, financialResult{chunk: chunk, extract: extract})
			mu.Unlock()
		}
		if err := a.fanoutPool.Submit(task); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// fanEvaluate submits one evaluate task per candidate chunk to the
// agent's fan-out pool, bounded by cfg.FanoutLimit, and collects
// non-nil hits in candidate order.
func (a *Agent) fanEvaluate(ctx context.Context, candidates []*core.Chunk, evaluate func(context.Context, *core.Chunk) (*probeHit, error)) ([]*probeHit, error) {
	hits := make([]*probeHit, len(candidates))
	errs := make([]error, len(candidates))
	var wg sync.WaitGroup

	for i, c := range candidates {
		i, c := i, c
		wg.Add(1)
		task := func() {
			defer wg.Done()
			hit, err := evaluate(ctx, c)
			if err != nil {
				errs[i] = err
				return
			}
			hits[i] = hit
		}
		if err := a.fanoutPool.Submit(task); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make([]*probeHit, 0, len(hits))
	for _, h := range hits {
		if h != nil {
			out = append(out, h)
		}
	}
	return out, nil
}

// bestHit picks the decisive hit among candidates crossing tau:
// highest confidence first, then lowest chunk position.
func bestHit(hits []*probeHit, tau float32) *probeHit {
	var best *probeHit
	for _, h := range hits {
		if h.confidence < tau {
			continue
		}
		if best == nil {
			best = h
			continue
		}
		if h.confidence > best.confidence {
			best = h
			continue
		}
		if h.confidence == best.confidence && h.chunk.Position < best.chunk.Position {
			best = h
		}
	}
	return best
}
