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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/config"
	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/store"
)

// state is a step in the per-item guardrail state machine. ROUTE
// happens once per turn, before any item enters this machine; COMPOSE
// happens once per turn, after every item has reached stateDone.
type state int

const (
	stateExclusionProbe state = iota
	stateInclusionProbe
	stateFinancialProbe
	stateDone
)

// itemRun carries one candidate item's working state as it walks the
// dispatch table.
type itemRun struct {
	item       string
	query      []float32
	citations  []core.Citation
	financials *core.Financials
	verdict    *core.Verdict
}

// stepFunc advances an itemRun and returns the next state to enter.
type stepFunc func(ctx context.Context, a *Agent, policyID string, r *itemRun) (state, error)

var dispatch = map[state]stepFunc{
	stateExclusionProbe: stepExclusionProbe,
	stateInclusionProbe: stepInclusionProbe,
	stateFinancialProbe: stepFinancialProbe,
}

// Agent implements the coverage guardrail's fixed-order reasoning.
// A single Agent is shared across every session an orchestrator holds,
// so composeSem — bounding concurrent LLMProvider.Compose streams — is
// a cross-session backpressure semaphore, not a per-session limit.
type Agent struct {
	store      store.Store
	provider   airag.Provider
	cfg        *config.Config
	fanoutPool *ants.Pool
	composeSem chan struct{}
	logger     *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// New creates a coverage-guardrail Agent. The fan-out pool bounding
// concurrent per-step LLM calls is sized by cfg.FanoutLimit.
func New(cfg *config.Config, chunkStore store.Store, provider airag.Provider, opts ...Option) (*Agent, error) {
	if chunkStore == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	pool, err := ants.NewPool(cfg.FanoutLimit)
	if err != nil {
		return nil, err
	}

	composeLimit := cfg.ComposeSemaphore
	if composeLimit <= 0 {
		composeLimit = 1
	}

	a := &Agent{
		store:      chunkStore,
		provider:   provider,
		cfg:        cfg,
		fanoutPool: pool,
		composeSem: make(chan struct{}, composeLimit),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			a.Release()
			return nil, err
		}
	}
	return a, nil
}

// Release releases the fan-out pool. The agent must not be used after
// Release.
func (a *Agent) Release() {
	if a.fanoutPool != nil {
		a.fanoutPool.Release()
	}
}

// Run evaluates utterance against policyID and streams the composed
// natural-language answer to w, returning the turn's primary verdict
// (the first-listed item's verdict when the router extracted more
// than one item).
func (a *Agent) Run(ctx context.Context, policyID, utterance string, w airag.TokenWriter) (*core.Verdict, error) {
	if policyID == "" {
		return nil, ErrPolicyIDRequired
	}

	intent, items := route(utterance)
	if len(items) == 0 {
		items = []string{utterance}
	}

	runs := make([]*itemRun, len(items))
	for i, item := range items {
		queryText := utterance
		if item != utterance {
			queryText = utterance + " " + item
		}
		var vec []float32
		err := retryWithBackoff(ctx, func() error {
			v, err := a.provider.Embedder().EmbedOne(ctx, queryText)
			vec = v
			return err
		}, a.cfg.RetryMaxTries, a.cfg.RetryBaseDelay)
		if err != nil {
			return nil, err
		}
		runs[i] = &itemRun{item: item, query: vec}
	}

	for _, r := range runs {
		if err := a.runItem(ctx, intent, policyID, r); err != nil {
			return nil, err
		}
	}

	verdicts := make([]*core.Verdict, len(runs))
	for i, r := range runs {
		verdicts[i] = r.verdict
	}

	if err := a.compose(ctx, utterance, verdicts, w); err != nil {
		return nil, err
	}

	primary := verdicts[0]
	if len(verdicts) > 1 {
		primary = foldAuxiliaryVerdicts(primary, verdicts[1:])
	}
	return primary, nil
}

// runItem walks r from stateExclusionProbe to stateDone via the
// dispatch table. Non-CHECK_COVERAGE intents skip straight to a
// bounded inclusion-style retrieval so the answer still carries
// citations.
func (a *Agent) runItem(ctx context.Context, intent Intent, policyID string, r *itemRun) error {
	st := stateExclusionProbe
	if intent != IntentCheckCoverage {
		st = stateInclusionProbe
	}

	for st != stateDone {
		step, ok := dispatch[st]
		if !ok {
			return fmt.Errorf("agent: no dispatch entry for state %d", st)
		}
		next, err := step(ctx, a, policyID, r)
		if err != nil {
			return err
		}
		st = next
	}
	return nil
}

func stepExclusionProbe(ctx context.Context, a *Agent, policyID string, r *itemRun) (state, error) {
	hit, _, err := a.runExclusionProbe(ctx, policyID, r.item, r.query)
	if err != nil {
		return stateDone, err
	}
	if hit != nil {
		r.citations = append(r.citations, citationFromHit(hit))
		r.verdict = &core.Verdict{
			Status:     core.StatusNotCovered,
			Item:       r.item,
			Reason:     hit.reason,
			Confidence: hit.confidence,
			Citations:  r.citations,
		}
		return stateDone, nil
	}
	return stateInclusionProbe, nil
}

func stepInclusionProbe(ctx context.Context, a *Agent, policyID string, r *itemRun) (state, error) {
	hit, _, err := a.runInclusionProbe(ctx, policyID, r.item, r.query)
	if err != nil {
		return stateDone, err
	}
	if hit == nil {
		r.verdict = &core.Verdict{
			Status:     core.StatusUnknown,
			Item:       r.item,
			Reason:     "no policy text found that confirms or excludes coverage for this item",
			Confidence: 0,
			Citations:  r.citations,
		}
		return stateDone, nil
	}
	r.citations = append(r.citations, citationFromHit(hit))
	r.verdict = &core.Verdict{
		Status:     core.StatusCovered,
		Item:       r.item,
		Reason:     hit.reason,
		Confidence: hit.confidence,
		Citations:  r.citations,
	}
	return stateFinancialProbe, nil
}

func stepFinancialProbe(ctx context.Context, a *Agent, policyID string, r *itemRun) (state, error) {
	results, err := a.runFinancialProbe(ctx, policyID, r.query)
	if err != nil {
		return stateDone, err
	}

	var conditions []string
	var deductible, cap *float64
	for _, res := range results {
		if res.extract.Deductible != nil {
			deductible = res.extract.Deductible
		}
		if res.extract.Cap != nil {
			cap = res.extract.Cap
		}
		conditions = append(conditions, res.extract.Conditions...)
		r.citations = append(r.citations, core.Citation{
			ChunkID:      res.chunk.Id,
			Page:         res.chunk.PageNumber,
			SectionTitle: res.chunk.SectionTitle,
			Quote:        truncateQuote(res.chunk.Text),
		})
	}

	if deductible != nil || cap != nil || len(conditions) > 0 {
		r.financials = &core.Financials{Deductible: deductible, Cap: cap, Conditions: conditions}
		if r.verdict.Status == core.StatusCovered && len(conditions) > 0 {
			r.verdict.Status = core.StatusConditional
		}
	}
	r.verdict.Citations = r.citations
	r.verdict.Financials = r.financials
	return stateDone, nil
}

func citationFromHit(hit *probeHit) core.Citation {
	return core.Citation{
		ChunkID:      hit.chunk.Id,
		Page:         hit.chunk.PageNumber,
		SectionTitle: hit.chunk.SectionTitle,
		Quote:        truncateQuote(hit.chunk.Text),
	}
}

const quoteMaxLen = 200

func truncateQuote(text string) string {
	if len(text) <= quoteMaxLen {
		return text
	}
	return strings.TrimSpace(text[:quoteMaxLen]) + "..."
}

// foldAuxiliaryVerdicts reports the primary item's verdict as the
// turn's structured CoverageVerdict while carrying every other item's
// verdict as auxiliary text in Financials.Conditions, per the
// per-item dominance rule for multi-item queries.
func foldAuxiliaryVerdicts(primary *core.Verdict, auxiliary []*core.Verdict) *core.Verdict {
	if primary.Financials == nil {
		primary.Financials = &core.Financials{}
	}
	for _, aux := range auxiliary {
		primary.Financials.Conditions = append(primary.Financials.Conditions,
			fmt.Sprintf("%s: %s (%s)", aux.Item, aux.Status, aux.Reason))
	}
	return primary
}

// compose builds the structured context for every item's verdict and
// hands it to the LLM provider's streaming composer. The composer is
// instructed (via the prompt built in airag/openai) to use only the
// supplied chunks; a claim outside them is a grounding failure, not a
// fatal error — see ErrGroundingFailure.
func (a *Agent) compose(ctx context.Context, utterance string, verdicts []*core.Verdict, w airag.TokenWriter) error {
	payload := composePayload{Utterance: utterance, Verdicts: verdicts}
	blob, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	select {
	case a.composeSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-a.composeSem }()

	return a.provider.LLMProvider().Compose(ctx, string(blob), w)
}

type composePayload struct {
	Utterance string          `json:"utterance"`
	Verdicts  []*core.Verdict `json:"verdicts"`
}
