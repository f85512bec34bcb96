// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"context"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/stacklok/vgate/pkg/errs"
)

// LLMProvider is a minimal chat-completion backend, satisfied by an
// *oai.Client wrapper; abstracted so tests can substitute a fake.
type LLMProvider interface {
	Complete(ctx context.Context, model, prompt string, temperature float64, maxTokens int) (string, error)
}

// OpenAIProvider adapts an *oai.Client to LLMProvider.
type OpenAIProvider struct {
	Client oai.Client
}

// NewOpenAIProvider constructs an OpenAIProvider from an API key.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{Client: oai.NewClient(option.WithAPIKey(apiKey))}
}

func (p *OpenAIProvider) Complete(ctx context.Context, model, prompt string, temperature float64, maxTokens int) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: []oai.ChatCompletionMessageParamUnion{oai.UserMessage(prompt)},
	}
	if temperature != 0 {
		params.Temperature = param.NewOpt(temperature)
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(maxTokens))
	}

	resp, err := p.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// LLMVariant implements the LLM routing backend: provider, model,
// prompt_template (already rendered by pkg/template by the time it reaches
// here), optional temperature, max_tokens, per spec §4.4's table.
type LLMVariant struct {
	Models LLMProvider
}

func (v *LLMVariant) Invoke(ctx context.Context, config map[string]any) (*Result, error) {
	if v.Models == nil {
		return nil, errs.NewTransportError("no LLM provider configured for this gateway instance", nil)
	}

	model, err := stringField(config, "model")
	if err != nil {
		return nil, err
	}
	prompt, err := stringField(config, "prompt_template")
	if err != nil {
		return nil, err
	}
	temperature := floatField(config, "temperature", 0)
	maxTokens := intField(config, "max_tokens", 0)

	runCtx, cancel := withTimeout(ctx, timeoutField(config, "timeout_ms", 0))
	defer cancel()

	text, err := v.Models.Complete(runCtx, model, prompt, temperature, maxTokens)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errs.NewTimeoutError("llm completion timed out", err)
		}
		return nil, errs.NewRemoteError("llm completion failed", err)
	}
	return textResult(true, text), nil
}

func floatField(config map[string]any, key string, fallback float64) float64 {
	v, ok := config[key]
	if !ok {
		return fallback
	}
	f, ok := v.(float64)
	if !ok {
		return fallback
	}
	return f
}
