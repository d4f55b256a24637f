// Package gateway talks to an OpenAI-compatible text service for answer
// scoring, transcript summaries, and question generation. All responses are
// treated as untrusted text and parsed defensively.
package gateway

import (
	"context"
	"fmt"

	"github.com/hirewise/interview-assistant/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI-compatible API client with the configured model and
// scoring range.
type Client struct {
	api      *openai.Client
	model    string
	scoreMin int
	scoreMax int
}

// New creates a gateway client from application configuration.
func New(cfg *config.Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.AIAPIKey)
	if cfg.AIBaseURL != "" {
		apiCfg.BaseURL = cfg.AIBaseURL
	}
	return &Client{
		api:      openai.NewClientWithConfig(apiCfg),
		model:    cfg.AIModel,
		scoreMin: cfg.ScoreMin,
		scoreMax: cfg.ScoreMax,
	}
}

// complete sends a single system prompt (plus optional user content) and
// returns the raw completion text in JSON mode.
func (c *Client) complete(ctx context.Context, systemPrompt, userContent string, temperature float32) (string, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userContent != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: userContent,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("AI API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
