package worker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/messaging"
	"storylion-server/internal/models"
)

const (
	// Images are rendered for the opening and closing pages of a story.
	illustratedPages = 2

	defaultStyle = "soft watercolor children's book illustration"
)

// Handler processes illustration tasks consumed from the queue.
type Handler struct {
	logger      *zap.Logger
	storyRepo   interfaces.StoryRepository
	illustRepo  interfaces.IllustrationRepository
	imageClient interfaces.ImageGenerator
	storage     interfaces.ObjectStorage
}

// NewHandler creates a task handler.
func NewHandler(
	logger *zap.Logger,
	storyRepo interfaces.StoryRepository,
	illustRepo interfaces.IllustrationRepository,
	imageClient interfaces.ImageGenerator,
	storage interfaces.ObjectStorage,
) *Handler {
	return &Handler{
		logger:      logger.Named("IllustrationWorker"),
		storyRepo:   storyRepo,
		illustRepo:  illustRepo,
		imageClient: imageClient,
		storage:     storage,
	}
}

// HandleDelivery processes one queue message. It returns true when the
// message should be acknowledged; failed jobs are acked too, their state is
// recorded on the job row instead of being redelivered forever.
func (h *Handler) HandleDelivery(ctx context.Context, msg amqp.Delivery) bool {
	start := time.Now()
	defer func() {
		taskDuration.Observe(time.Since(start).Seconds())
	}()

	var payload messaging.IllustrationTaskPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		h.logger.Error("Failed to unmarshal illustration task", zap.Error(err))
		tasksProcessed.WithLabelValues("error_unmarshal").Inc()
		return true
	}

	log := h.logger.With(zap.Int64("jobID", payload.JobID), zap.Int64("storyID", payload.StoryID))
	log.Info("Received illustration task")

	if err := h.process(ctx, payload); err != nil {
		log.Error("Illustration task failed", zap.Error(err))
		if finishErr := h.illustRepo.FinishJob(ctx, payload.JobID, models.JobStatusFailed, err.Error()); finishErr != nil {
			log.Error("Failed to record job failure", zap.Error(finishErr))
		}
		tasksProcessed.WithLabelValues("error_generation").Inc()
		return true
	}

	if err := h.illustRepo.FinishJob(ctx, payload.JobID, models.JobStatusSuccess, ""); err != nil {
		log.Error("Failed to record job success", zap.Error(err))
	}
	tasksProcessed.WithLabelValues("success").Inc()
	log.Info("Illustration task completed")
	return true
}

func (h *Handler) process(ctx context.Context, payload messaging.IllustrationTaskPayload) error {
	if err := h.illustRepo.MarkJobRunning(ctx, payload.JobID); err != nil {
		return err
	}

	story, err := h.storyRepo.GetStory(ctx, payload.StoryID)
	if err != nil {
		return fmt.Errorf("failed to load story: %w", err)
	}
	pages, err := h.storyRepo.ListPages(ctx, payload.StoryID)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("story %d has no pages", payload.StoryID)
	}

	style := payload.Style
	if style == "" {
		style = defaultStyle
	}

	targets := []models.StoryPage{pages[0]}
	if len(pages) > 1 {
		targets = append(targets, pages[len(pages)-1])
	}

	for i, page := range targets {
		prompt := buildPrompt(story, page, style)

		b64, err := h.imageClient.GenerateImage(ctx, prompt, "")
		if err != nil {
			imageAPIErrors.Inc()
			return fmt.Errorf("%w: page %d: %v", models.ErrImageFailed, page.PageNumber, err)
		}
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return fmt.Errorf("failed to decode image for page %d: %w", page.PageNumber, err)
		}

		objectPath := fmt.Sprintf("illustrations/%d/page_%d.png", story.ID, page.PageNumber)
		if _, err := h.storage.Save(ctx, objectPath, raw, "image/png"); err != nil {
			saveErrors.Inc()
			return fmt.Errorf("failed to store image for page %d: %w", page.PageNumber, err)
		}

		ill := &models.Illustration{
			StoryPageID: page.ID,
			ImagePath:   objectPath,
			Prompt:      prompt,
			Style:       style,
		}
		if err := h.illustRepo.CreateIllustration(ctx, ill); err != nil {
			return fmt.Errorf("failed to save illustration record for page %d: %w", page.PageNumber, err)
		}
		if err := h.illustRepo.UpdateJobProgress(ctx, payload.JobID, i+1); err != nil {
			h.logger.Warn("Failed to update job progress", zap.Error(err), zap.Int64("jobID", payload.JobID))
		}
	}
	return nil
}

// buildPrompt composes an image prompt from the story context and page text.
func buildPrompt(story *models.Story, page models.StoryPage, style string) string {
	return fmt.Sprintf(
		"%s. Illustration for a children's story titled %q, aimed at ages %s. Scene: %s No text in the image.",
		style, story.Title, story.AgeGroup, page.Text,
	)
}
