package database

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/models"
)

// Compile-time check to ensure pgLibraryRepository implements LibraryRepository
var _ interfaces.LibraryRepository = (*pgLibraryRepository)(nil)

type pgLibraryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgLibraryRepository creates a new PostgreSQL-backed LibraryRepository.
func NewPgLibraryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.LibraryRepository {
	return &pgLibraryRepository{
		db:     db,
		logger: logger.Named("PgLibraryRepo"),
	}
}

// UpsertLibrary adds a story to the user's library or bumps last_viewed_time
// when it is already there.
func (r *pgLibraryRepository) UpsertLibrary(ctx context.Context, userID, storyID int64) (*models.Library, error) {
	lib := &models.Library{}
	query := `
		INSERT INTO library (user_id, story_id, last_viewed_time)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, story_id) DO UPDATE SET last_viewed_time = NOW()
		RETURNING id, user_id, story_id, last_viewed_time`
	err := r.db.QueryRow(ctx, query, userID, storyID).
		Scan(&lib.ID, &lib.UserID, &lib.StoryID, &lib.LastViewedTime)
	if err != nil {
		r.logger.Error("Failed to upsert library entry", zap.Error(err), zap.Int64("userID", userID), zap.Int64("storyID", storyID))
		return nil, fmt.Errorf("failed to upsert library entry: %w", err)
	}
	return lib, nil
}

// ListLibrary returns the user's library, most recently viewed first.
func (r *pgLibraryRepository) ListLibrary(ctx context.Context, userID int64) ([]models.Library, error) {
	var entries []models.Library
	query := `
		SELECT id, user_id, story_id, last_viewed_time
		FROM library WHERE user_id = $1 ORDER BY last_viewed_time DESC NULLS LAST`
	if err := pgxscan.Select(ctx, r.db, &entries, query, userID); err != nil {
		r.logger.Error("Failed to list library", zap.Error(err), zap.Int64("userID", userID))
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	return entries, nil
}

// DeleteLibrary removes a library entry owned by the user.
func (r *pgLibraryRepository) DeleteLibrary(ctx context.Context, userID, libraryID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM library WHERE id = $1 AND user_id = $2`, libraryID, userID)
	if err != nil {
		r.logger.Error("Failed to delete library entry", zap.Error(err), zap.Int64("libraryID", libraryID))
		return fmt.Errorf("failed to delete library entry %d: %w", libraryID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddHistory appends a read event and refreshes the library entry alongside.
func (r *pgLibraryRepository) AddHistory(ctx context.Context, userID, storyID int64) (*models.History, error) {
	hist := &models.History{}
	query := `
		INSERT INTO history (user_id, story_id) VALUES ($1, $2)
		RETURNING id, user_id, story_id, viewed_time`
	err := r.db.QueryRow(ctx, query, userID, storyID).
		Scan(&hist.ID, &hist.UserID, &hist.StoryID, &hist.ViewedTime)
	if err != nil {
		r.logger.Error("Failed to add history", zap.Error(err), zap.Int64("userID", userID), zap.Int64("storyID", storyID))
		return nil, fmt.Errorf("failed to add history: %w", err)
	}
	if _, err := r.UpsertLibrary(ctx, userID, storyID); err != nil {
		return nil, err
	}
	return hist, nil
}

// ListHistory returns the user's read history, newest first.
func (r *pgLibraryRepository) ListHistory(ctx context.Context, userID int64) ([]models.History, error) {
	var entries []models.History
	query := `
		SELECT id, user_id, story_id, viewed_time
		FROM history WHERE user_id = $1 ORDER BY viewed_time DESC`
	if err := pgxscan.Select(ctx, r.db, &entries, query, userID); err != nil {
		r.logger.Error("Failed to list history", zap.Error(err), zap.Int64("userID", userID))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}
