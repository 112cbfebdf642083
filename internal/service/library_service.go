package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/models"
)

// LibraryService manages a user's kept stories and reading history.
type LibraryService interface {
	ListLibrary(ctx context.Context, userID int64) ([]models.Library, error)
	DeleteLibrary(ctx context.Context, userID, libraryID int64) error
	// RecordRead appends a history entry and refreshes the library row's
	// last-viewed time.
	RecordRead(ctx context.Context, userID, storyID int64) (*models.History, error)
	ListHistory(ctx context.Context, userID int64) ([]models.History, error)
}

// Compile-time check to ensure libraryServiceImpl implements LibraryService
var _ LibraryService = (*libraryServiceImpl)(nil)

type libraryServiceImpl struct {
	libraryRepo interfaces.LibraryRepository
	storyRepo   interfaces.StoryRepository
	logger      *zap.Logger
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(libraryRepo interfaces.LibraryRepository, storyRepo interfaces.StoryRepository, logger *zap.Logger) LibraryService {
	return &libraryServiceImpl{
		libraryRepo: libraryRepo,
		storyRepo:   storyRepo,
		logger:      logger.Named("LibraryService"),
	}
}

func (s *libraryServiceImpl) ListLibrary(ctx context.Context, userID int64) ([]models.Library, error) {
	return s.libraryRepo.ListLibrary(ctx, userID)
}

func (s *libraryServiceImpl) DeleteLibrary(ctx context.Context, userID, libraryID int64) error {
	return s.libraryRepo.DeleteLibrary(ctx, userID, libraryID)
}

func (s *libraryServiceImpl) RecordRead(ctx context.Context, userID, storyID int64) (*models.History, error) {
	if _, err := s.storyRepo.GetStory(ctx, storyID); err != nil {
		return nil, err
	}
	history, err := s.libraryRepo.AddHistory(ctx, userID, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to record read: %w", err)
	}
	// Reading a story also refreshes its library entry.
	if _, err := s.libraryRepo.UpsertLibrary(ctx, userID, storyID); err != nil {
		s.logger.Warn("Failed to refresh library entry on read",
			zap.Error(err), zap.Int64("userID", userID), zap.Int64("storyID", storyID))
	}
	return history, nil
}

func (s *libraryServiceImpl) ListHistory(ctx context.Context, userID int64) ([]models.History, error) {
	return s.libraryRepo.ListHistory(ctx, userID)
}
