package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/messaging"
	"storylion-server/internal/models"
	"storylion-server/internal/textutil"
)

// StoryService is the read surface for stories plus classic upload and
// illustration job enqueueing.
type StoryService interface {
	// UploadClassic ingests a raw text blob of unknown encoding as a classic
	// story, segmenting it into pages.
	UploadClassic(ctx context.Context, userID int64, title, author string, raw []byte) (*models.Story, error)
	ListStories(ctx context.Context, category string) ([]models.Story, error)
	GetStory(ctx context.Context, storyID int64) (*models.Story, error)
	GetPages(ctx context.Context, storyID int64) ([]models.StoryPage, error)
	// GetScript returns the story text joined for narration.
	GetScript(ctx context.Context, storyID int64) (string, error)
	// RequestIllustrations creates a job row and enqueues it for the worker.
	RequestIllustrations(ctx context.Context, userID, storyID int64, style string) (*models.IllustrationJob, error)
	GetIllustrationJob(ctx context.Context, jobID int64) (*models.IllustrationJob, error)
}

// Compile-time check to ensure storyServiceImpl implements StoryService
var _ StoryService = (*storyServiceImpl)(nil)

type storyServiceImpl struct {
	storyRepo  interfaces.StoryRepository
	illustRepo interfaces.IllustrationRepository
	publisher  messaging.IllustrationTaskPublisher
	storage    interfaces.ObjectStorage
	logger     *zap.Logger
}

// NewStoryService creates a new StoryService.
func NewStoryService(
	storyRepo interfaces.StoryRepository,
	illustRepo interfaces.IllustrationRepository,
	publisher messaging.IllustrationTaskPublisher,
	storage interfaces.ObjectStorage,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		storyRepo:  storyRepo,
		illustRepo: illustRepo,
		publisher:  publisher,
		storage:    storage,
		logger:     logger.Named("StoryService"),
	}
}

func (s *storyServiceImpl) UploadClassic(ctx context.Context, userID int64, title, author string, raw []byte) (*models.Story, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: story text is empty", models.ErrValidation)
	}
	text, err := textutil.DecodeBestEffort(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable story text: %v", models.ErrValidation, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: story text is empty", models.ErrValidation)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultStoryTitle
	}

	pages := textutil.SplitIntoPages(text, textutil.DefaultSentencesPerPage)
	story := &models.Story{
		UserID:   userID,
		Title:    title,
		Author:   author,
		Content:  text,
		Category: models.CategoryClassic,
	}
	if err := s.storyRepo.CreateStory(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to persist classic story: %w", err)
	}
	if err := s.storyRepo.CreatePages(ctx, story.ID, pages); err != nil {
		return nil, fmt.Errorf("failed to persist pages: %w", err)
	}
	story.PageCount = len(pages)

	// Keep the source blob for re-segmentation or audit.
	sourcePath := fmt.Sprintf("classics/%d/source.txt", story.ID)
	if _, err := s.storage.Save(ctx, sourcePath, []byte(text), "text/plain; charset=utf-8"); err != nil {
		s.logger.Warn("Failed to archive classic source text", zap.Error(err), zap.Int64("storyID", story.ID))
	}

	s.logger.Info("Classic story uploaded",
		zap.Int64("storyID", story.ID), zap.String("title", title), zap.Int("pages", len(pages)))
	return story, nil
}

func (s *storyServiceImpl) ListStories(ctx context.Context, category string) ([]models.Story, error) {
	if category != "" &&
		category != models.CategoryClassic &&
		category != models.CategoryCustom &&
		category != models.CategoryExtended {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}
	return s.storyRepo.ListStories(ctx, category)
}

func (s *storyServiceImpl) GetStory(ctx context.Context, storyID int64) (*models.Story, error) {
	return s.storyRepo.GetStory(ctx, storyID)
}

func (s *storyServiceImpl) GetPages(ctx context.Context, storyID int64) ([]models.StoryPage, error) {
	if _, err := s.storyRepo.GetStory(ctx, storyID); err != nil {
		return nil, err
	}
	return s.storyRepo.ListPages(ctx, storyID)
}

func (s *storyServiceImpl) GetScript(ctx context.Context, storyID int64) (string, error) {
	pages, err := s.GetPages(ctx, storyID)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, " "), nil
}

func (s *storyServiceImpl) RequestIllustrations(ctx context.Context, userID, storyID int64, style string) (*models.IllustrationJob, error) {
	story, err := s.storyRepo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != userID && story.Category != models.CategoryClassic {
		return nil, models.ErrForbidden
	}

	job := &models.IllustrationJob{
		StoryID:    storyID,
		Status:     models.JobStatusPending,
		TotalPages: 2,
	}
	if err := s.illustRepo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create illustration job: %w", err)
	}

	payload := messaging.IllustrationTaskPayload{
		JobID:   job.ID,
		StoryID: storyID,
		UserID:  userID,
		Style:   style,
	}
	if err := s.publisher.PublishIllustrationTask(ctx, payload); err != nil {
		if finishErr := s.illustRepo.FinishJob(ctx, job.ID, models.JobStatusFailed, "enqueue failed"); finishErr != nil {
			s.logger.Error("Failed to mark unqueued job failed", zap.Error(finishErr), zap.Int64("jobID", job.ID))
		}
		return nil, fmt.Errorf("failed to enqueue illustration job: %w", err)
	}
	return job, nil
}

func (s *storyServiceImpl) GetIllustrationJob(ctx context.Context, jobID int64) (*models.IllustrationJob, error) {
	return s.illustRepo.GetJob(ctx, jobID)
}
