// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/stacklok/vgate/pkg/conflict"
)

// Embedder generates a vector embedding for a string. OpenAIProvider in
// pkg/router only does chat completion and does not implement it;
// SemanticScorer only needs the embedding call, so it takes its own minimal
// interface (OpenAIEmbedder implements it).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SemanticScorer ranks candidates by cosine similarity between the request's
// embedding and each tool's precomputed embedding, per spec §4.9. When pool
// is nil (no Postgres DSN configured) embeddings live only in the in-process
// cache — persistence across restarts is an enrichment, not a requirement,
// since spec.md never mandates a database (SPEC_FULL §5.9).
type SemanticScorer struct {
	embedder Embedder
	pool     *pgxpool.Pool // optional; nil falls back to pure in-memory vectors

	mu         sync.RWMutex
	toolVector map[string][]float32 // tool name -> embedding, refreshed per snapshot
	snapshotID uint64
}

// NewSemanticScorer constructs a scorer. pool may be nil.
func NewSemanticScorer(embedder Embedder, pool *pgxpool.Pool) *SemanticScorer {
	return &SemanticScorer{embedder: embedder, pool: pool, toolVector: map[string][]float32{}}
}

// EnsureEmbeddings (re)computes tool embeddings for the given snapshot if the
// cached generation is stale. Embeddings are generated from the tool's name
// plus description; local or remote, the text is whatever the catalog entry
// already carries (remote metadata is never enriched, per spec §4.9).
func (s *SemanticScorer) EnsureEmbeddings(ctx context.Context, snapshotID uint64, candidates []conflict.Entry) error {
	s.mu.RLock()
	stale := s.snapshotID != snapshotID
	s.mu.RUnlock()
	if !stale {
		return nil
	}

	fresh := make(map[string][]float32, len(candidates))
	for _, c := range candidates {
		text := embeddingText(c)
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed tool %q: %w", c.Name, err)
		}
		fresh[c.Name] = vec
		if s.pool != nil {
			if err := s.persist(ctx, snapshotID, c.Name, vec); err != nil {
				return err
			}
		}
	}

	s.mu.Lock()
	s.toolVector = fresh
	s.snapshotID = snapshotID
	s.mu.Unlock()
	return nil
}

func (s *SemanticScorer) persist(ctx context.Context, snapshotID uint64, toolName string, vec []float32) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tool_embeddings (snapshot_id, tool_name, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_id, tool_name) DO UPDATE SET embedding = EXCLUDED.embedding
	`, snapshotID, toolName, pgvector.NewVector(vec))
	return err
}

// Score embeds the request and returns cosine similarity against each
// candidate's cached embedding.
func (s *SemanticScorer) Score(ctx context.Context, request string, candidates []conflict.Entry) (map[string]float64, error) {
	requestVec, err := s.embedder.Embed(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		toolVec, ok := s.toolVector[c.Name]
		if !ok {
			scores[c.Name] = 0
			continue
		}
		scores[c.Name] = cosineSimilarity(requestVec, toolVec)
	}
	return scores, nil
}

func embeddingText(e conflict.Entry) string {
	if e.Origin == conflict.OriginLocal && e.LocalTool != nil {
		return e.LocalTool.Name + " " + e.LocalTool.Description
	}
	if e.RemoteTool != nil {
		return e.RemoteTool.Name + " " + e.RemoteTool.Description
	}
	return e.Name
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// clamp floating point drift into [0,1] since cosine similarity of
	// non-negative embeddings is never meaningfully negative here.
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
