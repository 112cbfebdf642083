package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/messaging"
)

// MockTextGenerator is a mock type for the TextGenerator type
type MockTextGenerator struct {
	mock.Mock
}

var _ interfaces.TextGenerator = (*MockTextGenerator)(nil)

func (_m *MockTextGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ret := _m.Called(ctx, systemPrompt, userPrompt)
	return ret.String(0), ret.Error(1)
}

func (_m *MockTextGenerator) GenerateTextStream(ctx context.Context, systemPrompt, userPrompt string, onDelta func(delta string)) (string, error) {
	ret := _m.Called(ctx, systemPrompt, userPrompt, onDelta)
	return ret.String(0), ret.Error(1)
}

// MockTranscriber is a mock type for the Transcriber type
type MockTranscriber struct {
	mock.Mock
}

var _ interfaces.Transcriber = (*MockTranscriber)(nil)

func (_m *MockTranscriber) Transcribe(ctx context.Context, audio io.Reader, language string) (string, error) {
	ret := _m.Called(ctx, audio, language)
	return ret.String(0), ret.Error(1)
}

// MockImageGenerator is a mock type for the ImageGenerator type
type MockImageGenerator struct {
	mock.Mock
}

var _ interfaces.ImageGenerator = (*MockImageGenerator)(nil)

func (_m *MockImageGenerator) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	ret := _m.Called(ctx, prompt, size)
	return ret.String(0), ret.Error(1)
}

// MockVoiceEngine is a mock type for the VoiceEngine type
type MockVoiceEngine struct {
	mock.Mock
}

var _ interfaces.VoiceEngine = (*MockVoiceEngine)(nil)

func (_m *MockVoiceEngine) ExtractToneColor(ctx context.Context, referencePath string) (string, error) {
	ret := _m.Called(ctx, referencePath)
	return ret.String(0), ret.Error(1)
}

func (_m *MockVoiceEngine) Synthesize(ctx context.Context, text, language, outputPath string) (string, error) {
	ret := _m.Called(ctx, text, language, outputPath)
	return ret.String(0), ret.Error(1)
}

func (_m *MockVoiceEngine) ConvertToneColor(ctx context.Context, sourcePath, embeddingPath, outputPath string) (string, error) {
	ret := _m.Called(ctx, sourcePath, embeddingPath, outputPath)
	return ret.String(0), ret.Error(1)
}

// MockObjectStorage is a mock type for the ObjectStorage type
type MockObjectStorage struct {
	mock.Mock
}

var _ interfaces.ObjectStorage = (*MockObjectStorage)(nil)

func (_m *MockObjectStorage) Save(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	ret := _m.Called(ctx, path, data, contentType)
	return ret.String(0), ret.Error(1)
}

func (_m *MockObjectStorage) URL(ctx context.Context, path string) (string, error) {
	ret := _m.Called(ctx, path)
	return ret.String(0), ret.Error(1)
}

func (_m *MockObjectStorage) Exists(ctx context.Context, path string) (bool, error) {
	ret := _m.Called(ctx, path)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockObjectStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	ret := _m.Called(ctx, path)

	var r0 io.ReadCloser
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(io.ReadCloser)
	}
	return r0, ret.Error(1)
}

// MockIllustrationTaskPublisher is a mock type for the IllustrationTaskPublisher type
type MockIllustrationTaskPublisher struct {
	mock.Mock
}

var _ messaging.IllustrationTaskPublisher = (*MockIllustrationTaskPublisher)(nil)

func (_m *MockIllustrationTaskPublisher) PublishIllustrationTask(ctx context.Context, payload messaging.IllustrationTaskPayload) error {
	ret := _m.Called(ctx, payload)
	return ret.Error(0)
}

// MockSessionStore is a mock type for the session.Store type
type MockSessionStore struct {
	mock.Mock
}

func (_m *MockSessionStore) Set(ctx context.Context, scopeKey string, fields map[string]string) error {
	ret := _m.Called(ctx, scopeKey, fields)
	return ret.Error(0)
}

func (_m *MockSessionStore) Get(ctx context.Context, scopeKey string) (map[string]string, error) {
	ret := _m.Called(ctx, scopeKey)

	var r0 map[string]string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]string)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionStore) Delete(ctx context.Context, scopeKeys ...string) error {
	args := make([]interface{}, 0, len(scopeKeys)+1)
	args = append(args, ctx)
	for _, k := range scopeKeys {
		args = append(args, k)
	}
	ret := _m.Called(args...)
	return ret.Error(0)
}
