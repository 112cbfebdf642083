package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storylion-server/internal/middleware"
	"storylion-server/internal/models"
)

func (h *Handler) getMe(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	user, err := h.accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	if err := h.accounts.DeleteAccount(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "계정이 삭제되었습니다"})
}
