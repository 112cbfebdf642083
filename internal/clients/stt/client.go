package stt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"storylion-server/internal/interfaces"
)

const defaultTimeout = 60 * time.Second

// Compile-time check to ensure Client implements Transcriber
var _ interfaces.Transcriber = (*Client)(nil)

// Client wraps the Whisper-compatible transcription API. Each call carries one
// short WAV fragment; failures are per-call and do not poison the session.
type Client struct {
	openaiClient *openai.Client
	modelName    string
}

// NewClient creates a transcription client. model is e.g. "whisper-1".
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

// Transcribe converts a WAV clip to text using the given language hint.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, language string) (string, error) {
	resp, err := c.openaiClient.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.modelName,
		Reader:   audio,
		FilePath: "fragment.wav", // name only, used for format detection
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return resp.Text, nil
}
