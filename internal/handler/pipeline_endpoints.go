package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storylion-server/internal/middleware"
	"storylion-server/internal/models"
)

func (h *Handler) saveOptions(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req saveOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "runtime and age_group are required",
		})
		return
	}

	if err := h.pipeline.SaveOptions(c.Request.Context(), userID, req.Runtime, req.AgeGroup); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stepResponse{Message: "옵션이 저장되었습니다", Next: "draft"})
}

func (h *Handler) saveDraft(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req saveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "text is required",
		})
		return
	}

	stored, err := h.pipeline.SaveDraft(c.Request.Context(), userID, req.Text)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse{Message: "초안이 저장되었습니다", Text: stored, Next: "morals"})
}

func (h *Handler) saveMorals(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req saveMoralsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "invalid morals payload",
		})
		return
	}

	if err := h.pipeline.SaveMorals(c.Request.Context(), userID, req.SelectedMorals, req.CustomMorals); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stepResponse{Message: "교훈이 저장되었습니다", Next: "generate"})
}

func (h *Handler) generateStory(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	story, err := h.pipeline.Generate(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (h *Handler) resetPipeline(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	if err := h.pipeline.Reset(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "초기화되었습니다"})
}

func (h *Handler) listMorals(c *gin.Context) {
	morals, err := h.morals.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"morals": morals})
}
