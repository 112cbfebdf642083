package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
)

const defaultTimeout = 600 * time.Second // tone-color extraction is slow on CPU

// Compile-time check to ensure Client implements VoiceEngine
var _ interfaces.VoiceEngine = (*Client)(nil)

// Client talks to the OpenVoice-style synthesis sidecar over HTTP JSON. All
// audio payloads are exchanged as object-storage paths, never as raw bytes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a voice engine client for the sidecar at baseURL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.Named("VoiceClient"),
	}
}

type extractRequest struct {
	ReferencePath string `json:"reference_path"`
}

type synthesizeRequest struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	OutputPath string `json:"output_path"`
}

type convertRequest struct {
	SourcePath    string `json:"source_path"`
	EmbeddingPath string `json:"embedding_path"`
	OutputPath    string `json:"output_path"`
}

type pathResponse struct {
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

// ExtractToneColor derives a tone-color embedding from a reference clip and
// returns the storage path of the embedding file.
func (c *Client) ExtractToneColor(ctx context.Context, referencePath string) (string, error) {
	return c.post(ctx, "/v1/tone-color/extract", extractRequest{ReferencePath: referencePath})
}

// Synthesize renders text with the base speaker of the given language into
// outputPath.
func (c *Client) Synthesize(ctx context.Context, text, language, outputPath string) (string, error) {
	return c.post(ctx, "/v1/tts/synthesize", synthesizeRequest{Text: text, Language: language, OutputPath: outputPath})
}

// ConvertToneColor re-voices a base-speaker clip into the target tone color.
func (c *Client) ConvertToneColor(ctx context.Context, sourcePath, embeddingPath, outputPath string) (string, error) {
	return c.post(ctx, "/v1/tone-color/convert", convertRequest{
		SourcePath:    sourcePath,
		EmbeddingPath: embeddingPath,
		OutputPath:    outputPath,
	})
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal voice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build voice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Voice engine request failed", zap.Error(err), zap.String("endpoint", endpoint))
		return "", fmt.Errorf("voice engine request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read voice response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Voice engine returned error status",
			zap.Int("status", resp.StatusCode), zap.String("endpoint", endpoint), zap.ByteString("body", respBody))
		return "", fmt.Errorf("voice engine returned status %d", resp.StatusCode)
	}

	var parsed pathResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode voice response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("voice engine error: %s", parsed.Error)
	}
	return parsed.Path, nil
}
