package handler

import "storylion-server/internal/models"

// --- Pipeline ---

type saveOptionsRequest struct {
	Runtime  string `json:"runtime" binding:"required"`
	AgeGroup string `json:"age_group" binding:"required"`
}

type saveDraftRequest struct {
	Text string `json:"text" binding:"required"`
}

type saveMoralsRequest struct {
	SelectedMorals []int64  `json:"selected_morals"`
	CustomMorals   []string `json:"custom_morals"`
}

// stepResponse acknowledges a pipeline stage and names the next one.
type stepResponse struct {
	Message string `json:"message"`
	Next    string `json:"next"`
}

type draftResponse struct {
	Message string `json:"message"`
	Text    string `json:"text"`
	Next    string `json:"next"`
}

// --- Stories ---

type classicUploadRequest struct {
	Title  string `form:"title"`
	Author string `form:"author"`
}

type scriptResponse struct {
	StoryID int64  `json:"story_id"`
	Script  string `json:"script"`
}

type illustrationRequest struct {
	Style string `json:"style"`
}

// --- Chat ---

type createRoomRequest struct {
	StoryID int64 `json:"story_id" binding:"required"`
}

// chatFrame is one inbound websocket message in a chat room.
type chatFrame struct {
	Message string `json:"message"`
}

// outboundChatFrame is one broadcast payload.
type outboundChatFrame struct {
	Sender  string `json:"sender"`
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"` // "turn_end", "session_done", "error"
	StoryID int64  `json:"story_id,omitempty"`
}

// --- Voice ---

type cloneVoiceRequest struct {
	VoiceName      string `form:"voice_name" binding:"required"`
	VoiceImageCode string `form:"voice_image_code"`
}

type narrationResponse struct {
	URL string `json:"url"`
}

// --- Library ---

type recordReadRequest struct {
	StoryID int64 `json:"story_id" binding:"required"`
}

type storyListResponse struct {
	Stories []models.Story `json:"stories"`
}
