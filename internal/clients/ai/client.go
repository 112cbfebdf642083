package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"storylion-server/internal/interfaces"
)

const defaultTimeout = 300 * time.Second

// Compile-time check to ensure Client implements TextGenerator
var _ interfaces.TextGenerator = (*Client)(nil)

// Client wraps the OpenAI-compatible chat completion API.
type Client struct {
	openaiClient *openai.Client
	modelName    string
}

// NewClient creates a text generation client. baseURL may be empty to use the
// default endpoint; model is e.g. "gpt-4o-mini".
func NewClient(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: defaultTimeout,
	}
	return &Client{
		openaiClient: openai.NewClientWithConfig(config),
		modelName:    model,
	}
}

// GenerateText sends one system+user message pair and returns the single
// completion string.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if userPrompt == "" {
		return "", fmt.Errorf("user prompt cannot be empty")
	}

	resp, err := c.openaiClient.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:    c.modelName,
			Messages: buildMessages(systemPrompt, userPrompt),
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("received empty response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateTextStream streams the completion, invoking onDelta for each
// incremental chunk, and returns the assembled text.
func (c *Client) GenerateTextStream(ctx context.Context, systemPrompt, userPrompt string, onDelta func(delta string)) (string, error) {
	if userPrompt == "" {
		return "", fmt.Errorf("user prompt cannot be empty")
	}

	stream, err := c.openaiClient.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Model:    c.modelName,
			Messages: buildMessages(systemPrompt, userPrompt),
			Stream:   true,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion stream failed: %w", err)
	}
	defer stream.Close()

	var full string
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("openai stream receive failed: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full += delta
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return full, nil
}

func buildMessages(systemPrompt, userPrompt string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})
	return messages
}
