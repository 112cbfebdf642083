package models

import "time"

// Message senders.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// ChatRoom binds a story and a user for a guided extension dialogue.
type ChatRoom struct {
	ID        int64     `json:"id" db:"id"`
	StoryID   int64     `json:"story_id" db:"story_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Message is one entry in a room's append-only ordered log. Prompt holds the
// full generation prompt that produced an AI message, kept for audit.
// Chat history is ephemeral: all messages of a room are deleted when the
// websocket connection closes.
type Message struct {
	ID        int64     `json:"id" db:"id"`
	RoomID    int64     `json:"room_id" db:"room_id"`
	StoryID   int64     `json:"story_id" db:"story_id"`
	Sender    string    `json:"sender" db:"sender"`
	Text      string    `json:"text" db:"text"`
	Prompt    string    `json:"-" db:"prompt"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
