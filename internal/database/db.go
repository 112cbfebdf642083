package database

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// InitDB creates the connection pool, verifies it, and applies pending
// migrations from migrationsDir (skipped with a warning if the directory is
// absent, e.g. in tests).
func InitDB(ctx context.Context, dsn, migrationsDir string, logger *zap.Logger) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Successfully connected to database")

	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		logger.Warn("Migrations directory not found", zap.String("dir", migrationsDir))
		return db, nil
	}

	if err := RunMigrations(ctx, db, migrationsDir, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// CloseDB closes the pool if it was opened.
func CloseDB(db *pgxpool.Pool, logger *zap.Logger) {
	if db != nil {
		db.Close()
		logger.Info("Database connection closed")
	}
}
