// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	openAIBaseURL  = "https://api.openai.com/v1"
	mistralBaseURL = "https://api.mistral.ai/v1"
	chatTimeout    = 90 * time.Second
)

// chatProvider talks to any OpenAI-compatible chat completions API.
type chatProvider struct {
	name   string
	model  string
	client *openai.Client
}

func newChatProvider(name, defaultBaseURL string, cfg ProviderConfig) *chatProvider {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = defaultBaseURL
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: chatTimeout}
	return &chatProvider{
		name:   name,
		model:  cfg.Model,
		client: openai.NewClientWithConfig(oc),
	}
}

func newOpenAI(cfg ProviderConfig) *chatProvider {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return newChatProvider("openai", openAIBaseURL, cfg)
}

// newMistral reuses the OpenAI client; Mistral serves the same API shape.
func newMistral(cfg ProviderConfig) *chatProvider {
	if cfg.Model == "" {
		cfg.Model = "mistral-large-latest"
	}
	return newChatProvider("mistral", mistralBaseURL, cfg)
}

func (p *chatProvider) Name() string { return p.name }

// Generate sends one system and one user message and returns the first
// choice's content.
func (p *chatProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", p.name)
	}
	slog.Debug("chat completion received", "provider", p.name, "model", p.model,
		"finish_reason", resp.Choices[0].FinishReason, "tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}
