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

// Compile-time check to ensure pgIllustrationRepository implements IllustrationRepository
var _ interfaces.IllustrationRepository = (*pgIllustrationRepository)(nil)

type pgIllustrationRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgIllustrationRepository creates a new PostgreSQL-backed IllustrationRepository.
func NewPgIllustrationRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.IllustrationRepository {
	return &pgIllustrationRepository{
		db:     db,
		logger: logger.Named("PgIllustrationRepo"),
	}
}

func (r *pgIllustrationRepository) CreateJob(ctx context.Context, job *models.IllustrationJob) error {
	query := `
		INSERT INTO illustration_jobs (story_id, status, total_pages)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, job.StoryID, job.Status, job.TotalPages).
		Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create illustration job", zap.Error(err), zap.Int64("storyID", job.StoryID))
		return fmt.Errorf("failed to create illustration job: %w", err)
	}
	return nil
}

func (r *pgIllustrationRepository) MarkJobRunning(ctx context.Context, jobID int64) error {
	query := `UPDATE illustration_jobs SET status = $1, started_at = NOW() WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, models.JobStatusRunning, jobID); err != nil {
		return fmt.Errorf("failed to mark job %d running: %w", jobID, err)
	}
	return nil
}

func (r *pgIllustrationRepository) UpdateJobProgress(ctx context.Context, jobID int64, completedPages int) error {
	query := `UPDATE illustration_jobs SET completed_pages = $1 WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, completedPages, jobID); err != nil {
		return fmt.Errorf("failed to update progress of job %d: %w", jobID, err)
	}
	return nil
}

func (r *pgIllustrationRepository) FinishJob(ctx context.Context, jobID int64, status, errorMessage string) error {
	query := `UPDATE illustration_jobs SET status = $1, error_message = $2, finished_at = NOW() WHERE id = $3`
	if _, err := r.db.Exec(ctx, query, status, errorMessage, jobID); err != nil {
		r.logger.Error("Failed to finish illustration job", zap.Error(err), zap.Int64("jobID", jobID))
		return fmt.Errorf("failed to finish job %d: %w", jobID, err)
	}
	return nil
}

func (r *pgIllustrationRepository) GetJob(ctx context.Context, jobID int64) (*models.IllustrationJob, error) {
	job := &models.IllustrationJob{}
	query := `
		SELECT id, story_id, status, total_pages, completed_pages, COALESCE(error_message, '') AS error_message, created_at, started_at, finished_at
		FROM illustration_jobs WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, job, query, jobID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get illustration job %d: %w", jobID, err)
	}
	return job, nil
}

func (r *pgIllustrationRepository) CreateIllustration(ctx context.Context, ill *models.Illustration) error {
	query := `
		INSERT INTO illustrations (story_page_id, image_path, prompt, style)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, ill.StoryPageID, ill.ImagePath, ill.Prompt, ill.Style).
		Scan(&ill.ID, &ill.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create illustration", zap.Error(err), zap.Int64("storyPageID", ill.StoryPageID))
		return fmt.Errorf("failed to create illustration: %w", err)
	}
	return nil
}
