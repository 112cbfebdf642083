package interfaces

import (
	"context"
	"io"
)

// TextGenerator is the external generative text model: one system+user message
// pair in, one completion out. GenerateTextStream yields incremental deltas
// for live relay to a connected client.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	GenerateTextStream(ctx context.Context, systemPrompt, userPrompt string, onDelta func(delta string)) (string, error)
}

// Transcriber is the external speech-to-text service. It takes one short WAV
// clip and a language hint; individual calls may fail without affecting the
// session that issued them.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, language string) (string, error)
}

// ImageGenerator produces a raster image for a text prompt at the target
// resolution, returned base64-encoded.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) (b64 string, err error)
}

// VoiceEngine is the voice-cloning / TTS sidecar: tone-color extraction from a
// reference clip, base-speaker synthesis, and conversion of a synthesized clip
// into the target tone color. All payloads are object-storage paths.
type VoiceEngine interface {
	ExtractToneColor(ctx context.Context, referencePath string) (embeddingPath string, err error)
	Synthesize(ctx context.Context, text, language, outputPath string) (string, error)
	ConvertToneColor(ctx context.Context, sourcePath, embeddingPath, outputPath string) (string, error)
}

// ObjectStorage is the binary artifact store for audio, images and classic
// story source text.
type ObjectStorage interface {
	Save(ctx context.Context, path string, data []byte, contentType string) (string, error)
	URL(ctx context.Context, path string) (string, error)
	Exists(ctx context.Context, path string) (bool, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
