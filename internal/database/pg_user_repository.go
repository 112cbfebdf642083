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

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// GetUserByID retrieves a user by id.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := pgxscan.Get(ctx, r.db, user, `SELECT id, username, avatar_code, created_at FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found", zap.Int64("id", id))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// DeleteUser removes the user row inside an explicit transaction. Foreign keys
// declare ON DELETE CASCADE, so the transaction boundary guarantees stories,
// pages, rooms, messages, library, history and voices disappear atomically
// with the account.
func (r *pgUserRepository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}
	r.logger.Info("User deleted with cascading records", zap.Int64("id", id))
	return nil
}
