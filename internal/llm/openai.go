package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const systemPrompt = "You are the assistant behind a chat application. " +
	"Answer the user's question clearly and concisely."

// OpenAIClient answers chat requests directly through the OpenAI API instead
// of the self-hosted upstream server.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed provider with API key and model
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		client: &client,
		model:  model,
	}
}

// GenerateReply generates an answer for the query using a chat completion
func (c *OpenAIClient) GenerateReply(ctx context.Context, sessionID, email, query string) (string, error) {
	res, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(query),
		},
		Temperature: param.Opt[float64]{Value: 0.7},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	if len(res.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return res.Choices[0].Message.Content, nil
}
