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
	"storylion-server/internal/textutil"
)

// Compile-time check to ensure pgMoralRepository implements MoralRepository
var _ interfaces.MoralRepository = (*pgMoralRepository)(nil)

type pgMoralRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgMoralRepository creates a new PostgreSQL-backed MoralRepository.
// The fixed system themes are seeded by migration.
func NewPgMoralRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.MoralRepository {
	return &pgMoralRepository{
		db:     db,
		logger: logger.Named("PgMoralRepo"),
	}
}

// List returns the full registry.
func (r *pgMoralRepository) List(ctx context.Context) ([]models.MoralTheme, error) {
	var morals []models.MoralTheme
	if err := pgxscan.Select(ctx, r.db, &morals, `SELECT id, key, name FROM moral_themes ORDER BY id`); err != nil {
		r.logger.Error("Failed to list moral themes", zap.Error(err))
		return nil, fmt.Errorf("failed to list moral themes: %w", err)
	}
	return morals, nil
}

// GetByIDs resolves registry ids to rows. Returns ErrMoralNotFound when any
// referenced id is absent, so a stale selection cannot silently shrink.
func (r *pgMoralRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.MoralTheme, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var morals []models.MoralTheme
	query := `SELECT id, key, name FROM moral_themes WHERE id = ANY($1) ORDER BY id`
	if err := pgxscan.Select(ctx, r.db, &morals, query, ids); err != nil {
		r.logger.Error("Failed to get moral themes by ids", zap.Error(err))
		return nil, fmt.Errorf("failed to get moral themes: %w", err)
	}
	if len(morals) != len(ids) {
		r.logger.Warn("Some moral ids not found", zap.Int("requested", len(ids)), zap.Int("found", len(morals)))
		return nil, models.ErrMoralNotFound
	}
	return morals, nil
}

// GetOrCreateByName resolves a free-text moral name to a registry row,
// creating it under a slugified key when absent. The unique key plus
// ON CONFLICT DO NOTHING makes the call idempotent under races, so the same
// display name entered twice never yields duplicate rows.
func (r *pgMoralRepository) GetOrCreateByName(ctx context.Context, name string) (*models.MoralTheme, error) {
	key := textutil.Slugify(name)
	if key == "" {
		return nil, fmt.Errorf("%w: moral name %q produces an empty key", models.ErrInvalidInput, name)
	}

	moral := &models.MoralTheme{}
	insert := `
		INSERT INTO moral_themes (key, name) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
		RETURNING id, key, name`
	err := r.db.QueryRow(ctx, insert, key, name).Scan(&moral.ID, &moral.Key, &moral.Name)
	if err == nil {
		r.logger.Info("Moral theme created", zap.String("key", key), zap.String("name", name))
		return moral, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to create moral theme", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to create moral theme %q: %w", key, err)
	}

	// Conflict: the key already exists, re-select it.
	err = r.db.QueryRow(ctx, `SELECT id, key, name FROM moral_themes WHERE key = $1`, key).
		Scan(&moral.ID, &moral.Key, &moral.Name)
	if err != nil {
		r.logger.Error("Failed to get moral theme after conflict", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get moral theme %q: %w", key, err)
	}
	return moral, nil
}
