package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/models"
)

// Compile-time check to ensure pgStoryRepository implements StoryRepository
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgStoryRepository creates a new PostgreSQL-backed StoryRepository.
func NewPgStoryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

// CreateStory inserts a new story row and assigns its generated id.
func (r *pgStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	query := `
		INSERT INTO stories (user_id, child_id, voice_id, title, author, content, page_count, runtime, age_group, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		story.UserID, story.ChildID, story.VoiceID, story.Title, story.Author,
		story.Content, story.PageCount, story.Runtime, story.AgeGroup, story.Category,
	).Scan(&story.ID, &story.CreatedAt, &story.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create story", zap.Error(err), zap.Int64("userID", story.UserID))
		return fmt.Errorf("failed to create story: %w", err)
	}
	r.logger.Info("Story created", zap.Int64("storyID", story.ID), zap.String("category", story.Category))
	return nil
}

// CreatePages inserts page rows numbered contiguously from 1 and syncs the
// parent's page_count. Not transactional with the story row: a crash mid-loop
// leaves partial pages, accepted because generation is retryable.
func (r *pgStoryRepository) CreatePages(ctx context.Context, storyID int64, pageTexts []string) error {
	query := `INSERT INTO story_pages (story_id, page_number, text) VALUES ($1, $2, $3)`
	for i, text := range pageTexts {
		if _, err := r.db.Exec(ctx, query, storyID, i+1, text); err != nil {
			r.logger.Error("Failed to create story page", zap.Error(err), zap.Int64("storyID", storyID), zap.Int("pageNumber", i+1))
			return fmt.Errorf("failed to create page %d of story %d: %w", i+1, storyID, err)
		}
	}
	if _, err := r.db.Exec(ctx, `UPDATE stories SET page_count = $1, updated_at = NOW() WHERE id = $2`, len(pageTexts), storyID); err != nil {
		return fmt.Errorf("failed to update page_count of story %d: %w", storyID, err)
	}
	return nil
}

// AttachMorals links moral themes to a story, ignoring duplicates.
func (r *pgStoryRepository) AttachMorals(ctx context.Context, storyID int64, moralIDs []int64) error {
	query := `INSERT INTO story_morals (story_id, moral_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, moralID := range moralIDs {
		if _, err := r.db.Exec(ctx, query, storyID, moralID); err != nil {
			r.logger.Error("Failed to attach moral", zap.Error(err), zap.Int64("storyID", storyID), zap.Int64("moralID", moralID))
			return fmt.Errorf("failed to attach moral %d to story %d: %w", moralID, storyID, err)
		}
	}
	return nil
}

// GetStory retrieves a story with its moral tags.
func (r *pgStoryRepository) GetStory(ctx context.Context, id int64) (*models.Story, error) {
	query := `
		SELECT id, user_id, child_id, voice_id, title, author, content, page_count, runtime, age_group, category, created_at, updated_at
		FROM stories WHERE id = $1`
	story := &models.Story{}
	err := pgxscan.Get(ctx, r.db, story, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Story not found", zap.Int64("id", id))
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get story %d: %w", id, err)
	}

	moralsQuery := `
		SELECT m.id, m.key, m.name FROM moral_themes m
		JOIN story_morals sm ON sm.moral_id = m.id
		WHERE sm.story_id = $1 ORDER BY m.id`
	if err := pgxscan.Select(ctx, r.db, &story.Morals, moralsQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get morals of story %d: %w", id, err)
	}
	return story, nil
}

// ListStories returns stories newest-first, optionally filtered by category.
func (r *pgStoryRepository) ListStories(ctx context.Context, category string) ([]models.Story, error) {
	var stories []models.Story
	var err error
	if category == "" {
		err = pgxscan.Select(ctx, r.db, &stories, `
			SELECT id, user_id, child_id, voice_id, title, author, content, page_count, runtime, age_group, category, created_at, updated_at
			FROM stories ORDER BY created_at DESC`)
	} else {
		err = pgxscan.Select(ctx, r.db, &stories, `
			SELECT id, user_id, child_id, voice_id, title, author, content, page_count, runtime, age_group, category, created_at, updated_at
			FROM stories WHERE category = $1 ORDER BY created_at DESC`, category)
	}
	if err != nil {
		r.logger.Error("Failed to list stories", zap.Error(err), zap.String("category", category))
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

// ListPages returns a story's pages in reading order.
func (r *pgStoryRepository) ListPages(ctx context.Context, storyID int64) ([]models.StoryPage, error) {
	var pages []models.StoryPage
	query := `
		SELECT id, story_id, page_number, text, created_at
		FROM story_pages WHERE story_id = $1 ORDER BY page_number`
	if err := pgxscan.Select(ctx, r.db, &pages, query, storyID); err != nil {
		r.logger.Error("Failed to list pages", zap.Error(err), zap.Int64("storyID", storyID))
		return nil, fmt.Errorf("failed to list pages of story %d: %w", storyID, err)
	}
	return pages, nil
}

// CreateExtension records the generated ending linked to the base story.
func (r *pgStoryRepository) CreateExtension(ctx context.Context, ext *models.StoryExtension) error {
	query := `
		INSERT INTO story_extensions (story_id, user_id, extended_content, dialogue_history)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, ext.StoryID, ext.UserID, ext.ExtendedContent, ext.DialogueHistory).
		Scan(&ext.ID, &ext.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create story extension", zap.Error(err), zap.Int64("storyID", ext.StoryID))
		return fmt.Errorf("failed to create story extension: %w", err)
	}
	return nil
}
