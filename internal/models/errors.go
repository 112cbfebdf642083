package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound      = errors.New("resource not found") // General not found
	ErrStoryNotFound = errors.New("story not found")
	ErrPageNotFound  = errors.New("story page not found")
	ErrRoomNotFound  = errors.New("chat room not found")
	ErrVoiceNotFound = errors.New("cloned voice not found")
	ErrMoralNotFound = errors.New("moral theme not found")

	// User & Authentication Errors
	ErrUserNotFound = errors.New("user not found")
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Story Pipeline Errors
	ErrValidation       = errors.New("validation error")
	ErrPipelineNotReady = errors.New("pipeline data is not ready")
	ErrGenerationFailed = errors.New("story generation failed")

	// Upstream Service Errors
	ErrTranscriptionFailed = errors.New("audio transcription failed")
	ErrSynthesisFailed     = errors.New("voice synthesis failed")
	ErrImageFailed         = errors.New("illustration generation failed")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
