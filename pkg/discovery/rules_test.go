// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/vgate/pkg/capability"
	"github.com/stacklok/vgate/pkg/conflict"
)

func localEntry(name, description string, keywords ...string) conflict.Entry {
	kw := make([]any, len(keywords))
	for i, k := range keywords {
		kw[i] = k
	}
	tool := capability.ToolDefinition{
		Name:        name,
		Description: description,
		Enabled:     true,
		Annotations: map[string]any{
			"discovery_metadata": map[string]any{"keywords": kw},
		},
	}
	return conflict.Entry{Name: name, Origin: conflict.OriginLocal, LocalTool: &tool}
}

func TestRuleScorer_KeywordOverlapScoresHigherThanUnrelated(t *testing.T) {
	t.Parallel()

	candidates := []conflict.Entry{
		localEntry("send_email", "send an email to a recipient", "email", "mail", "send"),
		localEntry("schedule_meeting", "schedule a calendar meeting", "calendar", "meeting"),
	}

	scores := RuleScorer{}.Score("email Bob the Q3 report", candidates)
	assert.Greater(t, scores["send_email"], scores["schedule_meeting"])
}

func TestRuleScorer_EmptyRequestScoresZero(t *testing.T) {
	t.Parallel()

	candidates := []conflict.Entry{localEntry("send_email", "send an email")}
	scores := RuleScorer{}.Score("", candidates)
	assert.Equal(t, 0.0, scores["send_email"])
}

func TestRuleScorer_FullCoverageScoresOne(t *testing.T) {
	t.Parallel()

	candidates := []conflict.Entry{localEntry("ping", "ping a host")}
	scores := RuleScorer{}.Score("ping", candidates)
	assert.Equal(t, 1.0, scores["ping"])
}
