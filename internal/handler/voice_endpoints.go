package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storylion-server/internal/middleware"
	"storylion-server/internal/models"
)

// maxReferenceAudioBytes bounds the reference clip upload.
const maxReferenceAudioBytes = 10 << 20

func (h *Handler) cloneVoice(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req cloneVoiceRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "voice_name is required",
		})
		return
	}

	file, _, err := c.Request.FormFile("reference")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "reference audio file is required",
		})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxReferenceAudioBytes))
	if err != nil {
		h.logger.Error("Failed to read reference audio", zap.Error(err))
		handleServiceError(c, models.ErrInternalServer)
		return
	}

	voice, err := h.voices.CloneVoice(c.Request.Context(), userID, req.VoiceName, req.VoiceImageCode, raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, voice)
}

func (h *Handler) listVoices(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	voices, err := h.voices.ListVoices(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voices": voices})
}

func (h *Handler) narrateStory(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	storyID, ok := parseIDParam(c, "storyID")
	if !ok {
		return
	}
	voiceID, ok := parseIDParam(c, "voiceID")
	if !ok {
		return
	}

	url, err := h.voices.NarrateStory(c.Request.Context(), userID, storyID, voiceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, narrationResponse{URL: url})
}
