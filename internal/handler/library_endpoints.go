package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storylion-server/internal/middleware"
	"storylion-server/internal/models"
)

func (h *Handler) listLibrary(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	entries, err := h.library.ListLibrary(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"library": entries})
}

func (h *Handler) deleteLibrary(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	libraryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.library.DeleteLibrary(c.Request.Context(), userID, libraryID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "삭제되었습니다"})
}

func (h *Handler) recordRead(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	var req recordReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "story_id is required",
		})
		return
	}
	history, err := h.library.RecordRead(c.Request.Context(), userID, req.StoryID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, history)
}

func (h *Handler) listHistory(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	history, err := h.library.ListHistory(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
