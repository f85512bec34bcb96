// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/router"
)

// LLMSelector delegates candidate selection to an LLM with a structured
// prompt listing candidates, per spec §4.9's llm_based mode: the model
// returns a tool choice, a confidence and an extracted argument map.
type LLMSelector struct {
	Provider router.LLMProvider
	Model    string
}

type llmSelection struct {
	ToolName   string         `json:"tool_name"`
	Arguments  map[string]any `json:"arguments"`
	Confidence float64        `json:"confidence"`
}

// Select asks the LLM to choose one of candidates for request and extract
// its arguments. The returned map keys every scored candidate by name so the
// hybrid combiner can treat a non-chosen candidate's LLM score as zero.
func (s *LLMSelector) Select(ctx context.Context, request string, candidates []conflict.Entry) (map[string]float64, map[string]map[string]any, error) {
	scores := make(map[string]float64, len(candidates))
	arguments := make(map[string]map[string]any, len(candidates))
	for _, c := range candidates {
		scores[c.Name] = 0
	}
	if s.Provider == nil || len(candidates) == 0 {
		return scores, arguments, nil
	}

	prompt := buildSelectionPrompt(request, candidates)
	text, err := s.Provider.Complete(ctx, s.Model, prompt, 0, 512)
	if err != nil {
		return nil, nil, fmt.Errorf("llm selection failed: %w", err)
	}

	var sel llmSelection
	if err := json.Unmarshal([]byte(extractJSON(text)), &sel); err != nil {
		return nil, nil, fmt.Errorf("llm returned non-JSON selection: %w", err)
	}
	if _, known := scores[sel.ToolName]; known {
		scores[sel.ToolName] = clamp01(sel.Confidence)
		arguments[sel.ToolName] = sel.Arguments
	}
	return scores, arguments, nil
}

func buildSelectionPrompt(request string, candidates []conflict.Entry) string {
	var b strings.Builder
	b.WriteString("Choose exactly one tool for the user's request and extract its arguments. ")
	b.WriteString("Respond with JSON only: {\"tool_name\": string, \"arguments\": object, \"confidence\": number 0-1}.\n\n")
	fmt.Fprintf(&b, "Request: %s\n\nCandidates:\n", request)
	for _, c := range candidates {
		name, description, schema := c.Name, "", ""
		if c.Origin == conflict.OriginLocal && c.LocalTool != nil {
			description = c.LocalTool.Description
			schema = string(c.LocalTool.InputSchema)
		} else if c.RemoteTool != nil {
			description = c.RemoteTool.Description
		}
		fmt.Fprintf(&b, "- %s: %s (schema: %s)\n", name, description, schema)
	}
	return b.String()
}

// extractJSON strips any leading/trailing prose or code-fence markers an LLM
// might wrap its JSON response in.
func extractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// OpenAIEmbedder adapts an *oai.Client to Embedder using the embeddings
// endpoint, the same client library OpenAIProvider uses for chat completion
// in pkg/router.
type OpenAIEmbedder struct {
	Client oai.Client
	Model  string
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	model := e.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	resp, err := e.Client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Input: oai.EmbeddingNewParamsInputUnion{OfString: oai.String(text)},
		Model: oai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai: empty embedding response")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, f := range resp.Data[0].Embedding {
		vec[i] = float32(f)
	}
	return vec, nil
}
