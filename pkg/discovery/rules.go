// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"strings"

	"github.com/stacklok/vgate/pkg/conflict"
)

// RuleScorer scores candidates by token overlap between the request and each
// tool's name, description and discovery_metadata keywords, per spec §4.9.
type RuleScorer struct{}

// Score returns one normalized [0,1] overlap score per candidate.
func (RuleScorer) Score(request string, candidates []conflict.Entry) map[string]float64 {
	requestTokens := tokenize(request)
	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scores[c.Name] = overlapScore(requestTokens, toolTokens(c))
	}
	return scores
}

func toolTokens(e conflict.Entry) map[string]struct{} {
	var name, description string
	var keywords []any

	if e.Origin == conflict.OriginLocal && e.LocalTool != nil {
		name, description = e.LocalTool.Name, e.LocalTool.Description
		if meta, ok := e.LocalTool.Annotations["discovery_metadata"].(map[string]any); ok {
			if kw, ok := meta["keywords"].([]any); ok {
				keywords = kw
			}
		}
	} else if e.RemoteTool != nil {
		name, description = e.RemoteTool.Name, e.RemoteTool.Description
	}

	tokens := tokenize(name + " " + description)
	for _, kw := range keywords {
		if s, ok := kw.(string); ok {
			for t := range tokenize(s) {
				tokens[t] = struct{}{}
			}
		}
	}
	return tokens
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// overlapScore is |intersection| / |request tokens|, so a request fully
// covered by a tool's vocabulary scores 1.0 regardless of the tool's own
// vocabulary size.
func overlapScore(request, tool map[string]struct{}) float64 {
	if len(request) == 0 {
		return 0
	}
	var hits int
	for t := range request {
		if _, ok := tool[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(request))
}
