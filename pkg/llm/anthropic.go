package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
}

func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *AnthropicClient {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AnthropicClient{
		client:    &client,
		model:     anthropic.ModelClaudeHaiku4_5,
		modelName: "claude-4.5-haiku",
	}
}

func (c *AnthropicClient) GenerateReport(ctx context.Context, prompt string) (*ReportResult, error) {
	content, err := c.complete(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   reportMaxTokens,
		Temperature: anthropic.Float(reportTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(content)
	if text == "" {
		return nil, fmt.Errorf("empty report from anthropic")
	}
	return &ReportResult{Text: text, ModelUsed: c.modelName}, nil
}

func (c *AnthropicClient) ScoreSentiment(ctx context.Context, text string) (*SentimentResult, error) {
	content, err := c.complete(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   sentimentTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: sentimentSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, err
	}
	return parseSentiment(content, c.modelName)
}

func (c *AnthropicClient) complete(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return resp.Content[0].Text, nil
}
