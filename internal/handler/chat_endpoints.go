package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storylion-server/internal/middleware"
	"storylion-server/internal/models"
)

func (h *Handler) createChatRoom(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code: models.ErrCodeValidation, Message: "story_id is required",
		})
		return
	}
	room, err := h.chat.CreateRoom(c.Request.Context(), req.StoryID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
