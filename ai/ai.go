// Package ai fetches safety recommendations for individual audit responses.
// The OpenAI client is built from explicit configuration at construction
// time; there is no package-level state.
package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/audithq/safety-audit/config"
)

const systemPrompt = "You are a safety expert providing recommendations based on audit responses."

const (
	defaultModel     = openai.GPT3Dot5Turbo
	defaultMaxTokens = 150
)

var ErrNotConfigured = errors.New("ai: missing API key")

type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

func New(cfg config.OpenAI) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		api:       openai.NewClient(cfg.APIKey),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Recommend produces a recommendation for one audit response. Model and
// token budget may be overridden per request; zero values use the
// configured defaults.
func (c *Client) Recommend(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
	if model == "" {
		model = c.model
	}
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("ai.completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("ai: no recommendation generated")
	}
	return resp.Choices[0].Message.Content, nil
}
