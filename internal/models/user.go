package models

import "time"

// User mirrors the account record owned by the auth server. This service only
// reads it to resolve token claims and to own cascading deletes.
type User struct {
	ID         int64     `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	AvatarCode string    `json:"avatar_code" db:"avatar_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Child is a child profile under a user account.
type Child struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	Name           string     `json:"name" db:"name"`
	Birth          *time.Time `json:"birth,omitempty" db:"birth"`
	Gender         string     `json:"gender,omitempty" db:"gender"`
	ChildImageCode string     `json:"child_image_code" db:"child_image_code"`
	IsActive       bool       `json:"is_active" db:"is_active"`
}

// ClonedVoice stores the artifacts of a voice-cloning run: the tone-color
// embedding extracted from the reference clip and the converted sample, both
// as object-storage paths.
type ClonedVoice struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	VoiceName       string    `json:"voice_name" db:"voice_name"`
	VoiceImageCode  string    `json:"voice_image_code" db:"voice_image_code"`
	ReferencePath   string    `json:"reference_path,omitempty" db:"reference_path"`
	EmbeddingPath   string    `json:"embedding_path,omitempty" db:"embedding_path"`
	ClonedVoicePath string    `json:"cloned_voice_path,omitempty" db:"cloned_voice_path"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
