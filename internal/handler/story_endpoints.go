package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storylion-server/internal/middleware"
	"storylion-server/internal/models"
)

// maxClassicUploadBytes bounds the classic story source file.
const maxClassicUploadBytes = 2 << 20

func (h *Handler) uploadClassic(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req classicUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "invalid upload form",
		})
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "file is required",
		})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxClassicUploadBytes))
	if err != nil {
		h.logger.Error("Failed to read classic upload", zap.Error(err))
		handleServiceError(c, models.ErrInternalServer)
		return
	}

	story, err := h.stories.UploadClassic(c.Request.Context(), userID, req.Title, req.Author, raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (h *Handler) listStories(c *gin.Context) {
	stories, err := h.stories.ListStories(c.Request.Context(), c.Query("category"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, storyListResponse{Stories: stories})
}

func (h *Handler) getStory(c *gin.Context) {
	storyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	story, err := h.stories.GetStory(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *Handler) getStoryPages(c *gin.Context) {
	storyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	pages, err := h.stories.GetPages(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story_id": storyID, "pages": pages})
}

func (h *Handler) getStoryScript(c *gin.Context) {
	storyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	script, err := h.stories.GetScript(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, scriptResponse{StoryID: storyID, Script: script})
}

func (h *Handler) requestIllustrations(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	storyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req illustrationRequest
	// Style is optional; an empty body is fine.
	_ = c.ShouldBindJSON(&req)

	job, err := h.stories.RequestIllustrations(c.Request.Context(), userID, storyID, req.Style)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (h *Handler) getIllustrationJob(c *gin.Context) {
	jobID, ok := parseIDParam(c, "jobID")
	if !ok {
		return
	}
	job, err := h.stories.GetIllustrationJob(c.Request.Context(), jobID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// parseIDParam reads a positive int64 path parameter, writing the error
// response itself on failure.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "invalid " + name,
		})
		return 0, false
	}
	return id, true
}
