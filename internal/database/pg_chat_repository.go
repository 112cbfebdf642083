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

// Compile-time check to ensure pgChatRepository implements ChatRepository
var _ interfaces.ChatRepository = (*pgChatRepository)(nil)

type pgChatRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgChatRepository creates a new PostgreSQL-backed ChatRepository.
func NewPgChatRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ChatRepository {
	return &pgChatRepository{
		db:     db,
		logger: logger.Named("PgChatRepo"),
	}
}

// GetRoom retrieves a chat room by id.
func (r *pgChatRepository) GetRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	err := pgxscan.Get(ctx, r.db, room, `SELECT id, story_id, user_id, created_at FROM chat_rooms WHERE id = $1`, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Chat room not found", zap.Int64("roomID", roomID))
			return nil, models.ErrRoomNotFound
		}
		r.logger.Error("Failed to get chat room", zap.Error(err), zap.Int64("roomID", roomID))
		return nil, fmt.Errorf("failed to get chat room %d: %w", roomID, err)
	}
	return room, nil
}

// GetOrCreateRoom returns the room binding (story, user), creating it if
// absent. The unique constraint on (story_id, user_id) keeps this idempotent.
func (r *pgChatRepository) GetOrCreateRoom(ctx context.Context, storyID, userID int64) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	insert := `
		INSERT INTO chat_rooms (story_id, user_id) VALUES ($1, $2)
		ON CONFLICT (story_id, user_id) DO NOTHING
		RETURNING id, story_id, user_id, created_at`
	err := r.db.QueryRow(ctx, insert, storyID, userID).Scan(&room.ID, &room.StoryID, &room.UserID, &room.CreatedAt)
	if err == nil {
		r.logger.Info("Chat room created", zap.Int64("roomID", room.ID), zap.Int64("storyID", storyID))
		return room, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to create chat room", zap.Error(err), zap.Int64("storyID", storyID))
		return nil, fmt.Errorf("failed to create chat room: %w", err)
	}

	err = pgxscan.Get(ctx, r.db, room,
		`SELECT id, story_id, user_id, created_at FROM chat_rooms WHERE story_id = $1 AND user_id = $2`,
		storyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat room after conflict: %w", err)
	}
	return room, nil
}

// SaveMessage appends a message to the room's log.
func (r *pgChatRepository) SaveMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (room_id, story_id, sender, text, prompt)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, timestamp`
	err := r.db.QueryRow(ctx, query, msg.RoomID, msg.StoryID, msg.Sender, msg.Text, msg.Prompt).
		Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		r.logger.Error("Failed to save message", zap.Error(err), zap.Int64("roomID", msg.RoomID), zap.String("sender", msg.Sender))
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// ListMessages returns a room's messages ordered oldest-first by timestamp.
func (r *pgChatRepository) ListMessages(ctx context.Context, roomID int64) ([]models.Message, error) {
	var messages []models.Message
	query := `
		SELECT id, room_id, story_id, sender, text, COALESCE(prompt, '') AS prompt, timestamp
		FROM messages WHERE room_id = $1 ORDER BY timestamp, id`
	if err := pgxscan.Select(ctx, r.db, &messages, query, roomID); err != nil {
		r.logger.Error("Failed to list messages", zap.Error(err), zap.Int64("roomID", roomID))
		return nil, fmt.Errorf("failed to list messages of room %d: %w", roomID, err)
	}
	return messages, nil
}

// CountAIQuestions counts AI-authored messages containing a question mark,
// which is how the state machine tracks required questions already asked.
func (r *pgChatRepository) CountAIQuestions(ctx context.Context, roomID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE room_id = $1 AND sender = 'ai' AND text LIKE '%?%'`
	if err := r.db.QueryRow(ctx, query, roomID).Scan(&count); err != nil {
		r.logger.Error("Failed to count AI questions", zap.Error(err), zap.Int64("roomID", roomID))
		return 0, fmt.Errorf("failed to count AI questions of room %d: %w", roomID, err)
	}
	return count, nil
}

// DeleteMessages wipes the room's message log.
func (r *pgChatRepository) DeleteMessages(ctx context.Context, roomID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM messages WHERE room_id = $1`, roomID); err != nil {
		r.logger.Error("Failed to delete messages", zap.Error(err), zap.Int64("roomID", roomID))
		return fmt.Errorf("failed to delete messages of room %d: %w", roomID, err)
	}
	r.logger.Debug("Room messages deleted", zap.Int64("roomID", roomID))
	return nil
}
