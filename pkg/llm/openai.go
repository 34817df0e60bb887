package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIClient struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
}

func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *OpenAIClient {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIClient{
		client:    &client,
		model:     openai.ChatModelGPT4oMini,
		modelName: "gpt-4o-mini",
	}
}

// GenerateReport sends the assembled market data as a single user message.
func (c *OpenAIClient) GenerateReport(ctx context.Context, prompt string) (*ReportResult, error) {
	content, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(reportTemperature),
		MaxTokens:   openai.Int(reportMaxTokens),
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(content)
	if text == "" {
		return nil, fmt.Errorf("empty report from openai")
	}
	return &ReportResult{Text: text, ModelUsed: c.modelName}, nil
}

func (c *OpenAIClient) ScoreSentiment(ctx context.Context, text string) (*SentimentResult, error) {
	content, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(sentimentSystemPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(sentimentTokens),
	})
	if err != nil {
		return nil, err
	}
	return parseSentiment(content, c.modelName)
}

func (c *OpenAIClient) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}
