// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package discovery implements the smart discovery engine (C9): a single
// meta-tool that picks one concrete tool out of the unified catalog for a
// natural-language request, using rule-based/semantic/LLM scorers combined
// under a configurable weighting, per spec §4.9.
package discovery

import "github.com/stacklok/vgate/pkg/conflict"

// Mode selects which scorer(s) the engine runs.
type Mode string

const (
	ModeRuleBased Mode = "rule_based"
	ModeSemantic  Mode = "semantic"
	ModeLLMBased  Mode = "llm_based"
	ModeHybrid    Mode = "hybrid"
)

// Weights are the hybrid mode's per-scorer combination weights (spec §9 Open
// Questions: defaults 0.15/0.30/0.55, overridable via configuration).
type Weights struct {
	Rule     float64
	Semantic float64
	LLM      float64
}

// DefaultWeights is the literal weighting from spec.md §8 scenario 5.
var DefaultWeights = Weights{Rule: 0.15, Semantic: 0.30, LLM: 0.55}

// Candidate is one scored tool in a ranking.
type Candidate struct {
	Entry     conflict.Entry
	RuleScore float64
	SemScore  float64
	LLMScore  float64
	Combined  float64
	Arguments map[string]any
}

// Outcome is what Discover returns: exactly one of Selected or LowConfidence
// is set, mirroring spec §4.9 step 4/5 and the LowConfidence result kind from
// spec §7.
type Outcome struct {
	// Selected is set when a candidate cleared confidence_threshold.
	Selected *Candidate
	// LowConfidence lists the top-K candidates when nothing cleared the
	// threshold; this is a structured result, not an error, per spec §7.
	LowConfidence []Candidate
}

// Request is one Discover call's input, mirroring the smart_tool_discovery
// tool's input schema from spec §4.9.
type Request struct {
	Text               string
	ToolHint           string
	ConfidenceThresh   float64
	SnapshotID         uint64
}
