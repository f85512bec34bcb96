// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/capability"
	"github.com/stacklok/vgate/pkg/conflict"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func TestCosineSimilarity_IdenticalVectorsScoreOne(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
}

func TestCosineSimilarity_OrthogonalVectorsScoreZero(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineSimilarity_MismatchedLengthScoresZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}))
}

func TestSemanticScorer_ScoresRankByEmbeddingCloseness(t *testing.T) {
	t.Parallel()

	tool := capability.ToolDefinition{Name: "send_email", Description: "send email"}
	other := capability.ToolDefinition{Name: "schedule_meeting", Description: "book meeting"}
	candidates := []conflict.Entry{
		{Name: tool.Name, Origin: conflict.OriginLocal, LocalTool: &tool},
		{Name: other.Name, Origin: conflict.OriginLocal, LocalTool: &other},
	}

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"send_email send email":      {1, 0},
		"schedule_meeting book meeting": {0, 1},
		"email Bob the Q3 report":    {1, 0},
	}}

	scorer := NewSemanticScorer(embedder, nil)
	require.NoError(t, scorer.EnsureEmbeddings(context.Background(), 1, candidates))

	scores, err := scorer.Score(context.Background(), "email Bob the Q3 report", candidates)
	require.NoError(t, err)
	assert.Greater(t, scores["send_email"], scores["schedule_meeting"])
}

func TestSemanticScorer_StaleSnapshotRecomputes(t *testing.T) {
	t.Parallel()

	tool := capability.ToolDefinition{Name: "ping", Description: "ping"}
	candidates := []conflict.Entry{{Name: tool.Name, Origin: conflict.OriginLocal, LocalTool: &tool}}

	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	scorer := NewSemanticScorer(embedder, nil)

	require.NoError(t, scorer.EnsureEmbeddings(context.Background(), 1, candidates))
	assert.Equal(t, uint64(1), scorer.snapshotID)

	require.NoError(t, scorer.EnsureEmbeddings(context.Background(), 2, candidates))
	assert.Equal(t, uint64(2), scorer.snapshotID)
}
