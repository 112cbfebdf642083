package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/models"
)

// Narration language for base-speaker synthesis.
const narrationLanguage = "KR"

// VoiceService clones voices from reference audio and narrates stories.
type VoiceService interface {
	// CloneVoice stores the reference clip, extracts its tone-color embedding
	// and records the voice.
	CloneVoice(ctx context.Context, userID int64, voiceName, voiceImageCode string, reference []byte) (*models.ClonedVoice, error)
	ListVoices(ctx context.Context, userID int64) ([]models.ClonedVoice, error)
	// NarrateStory synthesizes a story's script with the base speaker, converts
	// it to the cloned tone color and returns a download URL. The result is
	// cached in object storage per (story, voice).
	NarrateStory(ctx context.Context, userID, storyID, voiceID int64) (string, error)
}

// Compile-time check to ensure voiceServiceImpl implements VoiceService
var _ VoiceService = (*voiceServiceImpl)(nil)

type voiceServiceImpl struct {
	voiceRepo    interfaces.VoiceRepository
	storyService StoryService
	engine       interfaces.VoiceEngine
	storage      interfaces.ObjectStorage
	logger       *zap.Logger
}

// NewVoiceService creates a new VoiceService.
func NewVoiceService(
	voiceRepo interfaces.VoiceRepository,
	storyService StoryService,
	engine interfaces.VoiceEngine,
	storage interfaces.ObjectStorage,
	logger *zap.Logger,
) VoiceService {
	return &voiceServiceImpl{
		voiceRepo:    voiceRepo,
		storyService: storyService,
		engine:       engine,
		storage:      storage,
		logger:       logger.Named("VoiceService"),
	}
}

func (s *voiceServiceImpl) CloneVoice(ctx context.Context, userID int64, voiceName, voiceImageCode string, reference []byte) (*models.ClonedVoice, error) {
	if voiceName == "" {
		return nil, fmt.Errorf("%w: voice name is required", models.ErrValidation)
	}
	if len(reference) == 0 {
		return nil, fmt.Errorf("%w: reference audio is empty", models.ErrValidation)
	}

	referencePath := fmt.Sprintf("voices/%d/%s/reference.wav", userID, voiceName)
	if _, err := s.storage.Save(ctx, referencePath, reference, "audio/wav"); err != nil {
		return nil, fmt.Errorf("failed to store reference clip: %w", err)
	}

	embeddingPath, err := s.engine.ExtractToneColor(ctx, referencePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSynthesisFailed, err)
	}

	voice := &models.ClonedVoice{
		UserID:         userID,
		VoiceName:      voiceName,
		VoiceImageCode: voiceImageCode,
		ReferencePath:  referencePath,
		EmbeddingPath:  embeddingPath,
	}
	if err := s.voiceRepo.CreateVoice(ctx, voice); err != nil {
		return nil, fmt.Errorf("failed to persist cloned voice: %w", err)
	}
	s.logger.Info("Voice cloned", zap.Int64("userID", userID), zap.Int64("voiceID", voice.ID))
	return voice, nil
}

func (s *voiceServiceImpl) ListVoices(ctx context.Context, userID int64) ([]models.ClonedVoice, error) {
	return s.voiceRepo.ListVoices(ctx, userID)
}

func (s *voiceServiceImpl) NarrateStory(ctx context.Context, userID, storyID, voiceID int64) (string, error) {
	voice, err := s.voiceRepo.GetVoice(ctx, voiceID)
	if err != nil {
		return "", err
	}
	if voice.UserID != userID {
		return "", models.ErrForbidden
	}

	outputPath := fmt.Sprintf("narrations/%d/story_%d_voice_%d.wav", userID, storyID, voiceID)
	exists, err := s.storage.Exists(ctx, outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to check narration cache: %w", err)
	}
	if exists {
		return s.storage.URL(ctx, outputPath)
	}

	script, err := s.storyService.GetScript(ctx, storyID)
	if err != nil {
		return "", err
	}

	basePath := fmt.Sprintf("narrations/%d/story_%d_base.wav", userID, storyID)
	if _, err := s.engine.Synthesize(ctx, script, narrationLanguage, basePath); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrSynthesisFailed, err)
	}
	if _, err := s.engine.ConvertToneColor(ctx, basePath, voice.EmbeddingPath, outputPath); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrSynthesisFailed, err)
	}

	s.logger.Info("Story narrated",
		zap.Int64("userID", userID), zap.Int64("storyID", storyID), zap.Int64("voiceID", voiceID))
	return s.storage.URL(ctx, outputPath)
}
