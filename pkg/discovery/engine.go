// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"sort"
	"sync"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/errs"
	"github.com/stacklok/vgate/pkg/resolve"
)

// TopK is how many candidates a LowConfidence outcome lists.
const TopK = 5

// Config tunes the engine's thresholds and enabled modes, bound to
// configuration per SPEC_FULL §2.
type Config struct {
	Mode                 Mode
	Weights              Weights
	ConfidenceThreshold   float64
	HighQualityThreshold  float64
	MaxHighQualityMatches int // early-exit only fires when this equals 1
	FallbackEnabled       bool
}

// DefaultConfig mirrors spec.md §8's scenario defaults.
var DefaultConfig = Config{
	Mode:                  ModeHybrid,
	Weights:               DefaultWeights,
	ConfidenceThreshold:    0.7,
	HighQualityThreshold:   0.95,
	MaxHighQualityMatches:  1,
	FallbackEnabled:        true,
}

// ruleScorer is the interface RuleScorer satisfies; an Engine field of this
// type so tests can pin rule scores without relying on real token overlap.
type ruleScorer interface {
	Score(request string, candidates []conflict.Entry) map[string]float64
}

// Engine is the smart discovery meta-tool (C9): it scores the unified
// catalog against a natural-language request and either invokes the winner
// or reports a structured LowConfidence result, per spec §4.9.
type Engine struct {
	Resolver *resolve.Resolver
	Rule     ruleScorer
	Semantic *SemanticScorer
	LLM      *LLMSelector
	Config   Config

	mu     sync.Mutex
	caches map[Mode]*scoreCache
}

// NewEngine constructs an Engine with its per-mode caches initialized.
func NewEngine(resolver *resolve.Resolver, semantic *SemanticScorer, llm *LLMSelector, cfg Config) *Engine {
	return &Engine{
		Resolver: resolver,
		Rule:     RuleScorer{},
		Semantic: semantic,
		LLM:      llm,
		Config:   cfg,
		caches: map[Mode]*scoreCache{
			ModeRuleBased: newScoreCache(0),
			ModeSemantic:  newScoreCache(0),
			ModeLLMBased:  newScoreCache(0),
		},
	}
}

// Discover runs the pipeline from spec §4.9: candidate set, optional
// rule-based early exit, the scorer(s) e.Config.Mode selects, combine,
// threshold, or LowConfidence. Mode isolates the engine to exactly one
// scorer for rule_based/semantic/llm_based; hybrid (the default) runs all
// three under e.Config.Weights, per spec.md §4.9's four named modes.
func (e *Engine) Discover(ctx context.Context, req Request) (*Outcome, error) {
	snapshotID := e.Resolver.SnapshotID()
	candidates := eligibleCandidates(e.Resolver.List(), req.ToolHint)
	if len(candidates) == 0 {
		return nil, errs.NewNoCandidatesError("no enabled, non-hidden tools in the catalog", nil)
	}

	var (
		ruleScores, semScores, llmScores map[string]float64
		llmArgs                          map[string]map[string]any
		weights                          = e.Config.Weights
	)

	switch e.Config.Mode {
	case ModeRuleBased:
		ruleScores = e.scoreRule(req.Text, snapshotID, candidates)
		weights = Weights{Rule: 1}

	case ModeSemantic:
		if e.Semantic == nil {
			return nil, errs.NewInvalidConfigError("discovery mode semantic requires a configured semantic scorer", nil)
		}
		scores, err := e.scoreSemantic(ctx, req.Text, snapshotID, candidates)
		if err != nil {
			return nil, err
		}
		semScores = scores
		weights = Weights{Semantic: 1}

	case ModeLLMBased:
		if e.LLM == nil {
			return nil, errs.NewInvalidConfigError("discovery mode llm_based requires a configured LLM selector", nil)
		}
		scores, args, err := e.scoreLLM(ctx, req.Text, snapshotID, candidates)
		if err != nil {
			return nil, err
		}
		llmScores, llmArgs = scores, args
		weights = Weights{LLM: 1}

	default: // ModeHybrid, and the zero value
		ruleScores = e.scoreRule(req.Text, snapshotID, candidates)

		if top, ok := highQualityMatch(ruleScores, e.Config); ok {
			entry := entryByName(candidates, top)
			return &Outcome{Selected: &Candidate{Entry: entry, RuleScore: ruleScores[top], Combined: ruleScores[top]}}, nil
		}

		sem, llm, args, err := e.scoreRemaining(ctx, req.Text, snapshotID, candidates)
		if err != nil {
			return nil, err
		}
		semScores, llmScores, llmArgs = sem, llm, args
	}

	ranked := combine(candidates, ruleScores, semScores, llmScores, llmArgs, weights)

	threshold := req.ConfidenceThresh
	if threshold == 0 {
		threshold = e.Config.ConfidenceThreshold
	}

	if len(ranked) == 0 || ranked[0].Combined < threshold {
		k := TopK
		if k > len(ranked) {
			k = len(ranked)
		}
		return &Outcome{LowConfidence: ranked[:k]}, nil
	}

	winner := ranked[0]
	return &Outcome{Selected: &winner}, nil
}

// NextBest returns the next-ranked candidate after a failed invocation, for
// the fallback retry step (spec §4.9 step 5). It re-runs Discover and skips
// the name already tried.
func (e *Engine) NextBest(ctx context.Context, req Request, tried string) (*Candidate, error) {
	if !e.Config.FallbackEnabled {
		return nil, nil
	}
	outcome, err := e.Discover(ctx, req)
	if err != nil {
		return nil, err
	}
	candidates := outcome.LowConfidence
	if outcome.Selected != nil {
		candidates = []Candidate{*outcome.Selected}
	}
	for _, c := range candidates {
		if c.Entry.Name != tried {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (e *Engine) scoreRule(request string, snapshotID uint64, candidates []conflict.Entry) map[string]float64 {
	e.mu.Lock()
	cache := e.caches[ModeRuleBased]
	e.mu.Unlock()

	if cached, ok := cache.get(request, snapshotID); ok {
		return cached
	}
	scores := e.Rule.Score(request, candidates)
	cache.put(request, snapshotID, scores)
	return scores
}

// scoreRemaining runs the semantic and LLM scorers concurrently for hybrid
// mode, whichever of the two are wired; scoreSemantic/scoreLLM below run
// each in isolation for the single-mode cases.
func (e *Engine) scoreRemaining(ctx context.Context, request string, snapshotID uint64, candidates []conflict.Entry) (map[string]float64, map[string]float64, map[string]map[string]any, error) {
	var (
		wg                   sync.WaitGroup
		semScores, llmScores map[string]float64
		llmArgs              map[string]map[string]any
		semErr, llmErr       error
	)

	if e.Semantic != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			semScores, semErr = e.scoreSemantic(ctx, request, snapshotID, candidates)
		}()
	}

	if e.LLM != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			llmScores, llmArgs, llmErr = e.scoreLLM(ctx, request, snapshotID, candidates)
		}()
	}

	wg.Wait()
	if semErr != nil {
		return nil, nil, nil, semErr
	}
	if llmErr != nil {
		return nil, nil, nil, llmErr
	}
	return semScores, llmScores, llmArgs, nil
}

func (e *Engine) scoreSemantic(ctx context.Context, request string, snapshotID uint64, candidates []conflict.Entry) (map[string]float64, error) {
	e.mu.Lock()
	cache := e.caches[ModeSemantic]
	e.mu.Unlock()

	if cached, ok := cache.get(request, snapshotID); ok {
		return cached, nil
	}
	if err := e.Semantic.EnsureEmbeddings(ctx, snapshotID, candidates); err != nil {
		return nil, err
	}
	scores, err := e.Semantic.Score(ctx, request, candidates)
	if err != nil {
		return nil, err
	}
	cache.put(request, snapshotID, scores)
	return scores, nil
}

func (e *Engine) scoreLLM(ctx context.Context, request string, snapshotID uint64, candidates []conflict.Entry) (map[string]float64, map[string]map[string]any, error) {
	e.mu.Lock()
	cache := e.caches[ModeLLMBased]
	e.mu.Unlock()

	if cached, ok := cache.get(request, snapshotID); ok {
		return cached, nil, nil
	}
	scores, args, err := e.LLM.Select(ctx, request, candidates)
	if err != nil {
		return nil, nil, err
	}
	cache.put(request, snapshotID, scores)
	return scores, args, nil
}

func eligibleCandidates(catalog []conflict.Entry, toolHint string) []conflict.Entry {
	var out []conflict.Entry
	for _, e := range catalog {
		if toolHint != "" && e.Name != toolHint {
			continue
		}
		if e.Origin == conflict.OriginLocal && e.LocalTool != nil {
			if !e.LocalTool.Enabled || e.LocalTool.Hidden {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func highQualityMatch(ruleScores map[string]float64, cfg Config) (string, bool) {
	if cfg.MaxHighQualityMatches != 1 {
		return "", false
	}
	var best string
	var bestScore float64
	matches := 0
	for name, score := range ruleScores {
		if score >= cfg.HighQualityThreshold {
			matches++
			if score > bestScore {
				best, bestScore = name, score
			}
		}
	}
	if matches == 1 {
		return best, true
	}
	return "", false
}

func entryByName(candidates []conflict.Entry, name string) conflict.Entry {
	for _, c := range candidates {
		if c.Name == name {
			return c
		}
	}
	return conflict.Entry{}
}

func combine(candidates []conflict.Entry, rule, sem, llm map[string]float64, llmArgs map[string]map[string]any, weights Weights) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		cand := Candidate{
			Entry:     c,
			RuleScore: rule[c.Name],
			SemScore:  sem[c.Name],
			LLMScore:  llm[c.Name],
		}
		cand.Combined = weights.Rule*cand.RuleScore + weights.Semantic*cand.SemScore + weights.LLM*cand.LLMScore
		if args, ok := llmArgs[c.Name]; ok {
			cand.Arguments = args
		}
		out = append(out, cand)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Combined > out[j].Combined })
	return out
}
