package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"storylion-server/internal/interfaces"
)

const defaultTimeout = 300 * time.Second

// DefaultSize is the landscape resolution used for storybook illustrations.
const DefaultSize = "1536x1024"

// Compile-time check to ensure Client implements ImageGenerator
var _ interfaces.ImageGenerator = (*Client)(nil)

// Client wraps the image generation API.
type Client struct {
	openaiClient *openai.Client
	modelName    string
}

// NewClient creates an image generation client. model is e.g. "gpt-image-1".
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

// GenerateImage renders prompt at the requested size and returns the raster
// image base64-encoded.
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	if size == "" {
		size = DefaultSize
	}
	resp, err := c.openaiClient.CreateImage(ctx, openai.ImageRequest{
		Model:          c.modelName,
		Prompt:         prompt,
		Size:           size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("received empty image response from API")
	}
	return resp.Data[0].B64JSON, nil
}
