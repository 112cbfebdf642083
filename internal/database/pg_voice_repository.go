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

// Compile-time check to ensure pgVoiceRepository implements VoiceRepository
var _ interfaces.VoiceRepository = (*pgVoiceRepository)(nil)

type pgVoiceRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgVoiceRepository creates a new PostgreSQL-backed VoiceRepository.
func NewPgVoiceRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.VoiceRepository {
	return &pgVoiceRepository{
		db:     db,
		logger: logger.Named("PgVoiceRepo"),
	}
}

func (r *pgVoiceRepository) CreateVoice(ctx context.Context, voice *models.ClonedVoice) error {
	query := `
		INSERT INTO cloned_voices (user_id, voice_name, voice_image_code, reference_path, embedding_path, cloned_voice_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		voice.UserID, voice.VoiceName, voice.VoiceImageCode,
		voice.ReferencePath, voice.EmbeddingPath, voice.ClonedVoicePath,
	).Scan(&voice.ID, &voice.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create cloned voice", zap.Error(err), zap.Int64("userID", voice.UserID))
		return fmt.Errorf("failed to create cloned voice: %w", err)
	}
	r.logger.Info("Cloned voice created", zap.Int64("voiceID", voice.ID))
	return nil
}

func (r *pgVoiceRepository) GetVoice(ctx context.Context, id int64) (*models.ClonedVoice, error) {
	voice := &models.ClonedVoice{}
	query := `
		SELECT id, user_id, voice_name, voice_image_code, reference_path, embedding_path, cloned_voice_path, created_at
		FROM cloned_voices WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, voice, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrVoiceNotFound
		}
		r.logger.Error("Failed to get cloned voice", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get cloned voice %d: %w", id, err)
	}
	return voice, nil
}

func (r *pgVoiceRepository) ListVoices(ctx context.Context, userID int64) ([]models.ClonedVoice, error) {
	var voices []models.ClonedVoice
	query := `
		SELECT id, user_id, voice_name, voice_image_code, reference_path, embedding_path, cloned_voice_path, created_at
		FROM cloned_voices WHERE user_id = $1 ORDER BY created_at DESC`
	if err := pgxscan.Select(ctx, r.db, &voices, query, userID); err != nil {
		r.logger.Error("Failed to list cloned voices", zap.Error(err), zap.Int64("userID", userID))
		return nil, fmt.Errorf("failed to list cloned voices: %w", err)
	}
	return voices, nil
}
