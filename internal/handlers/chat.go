package handlers

import (
	"net/http"
	"time"

	"salesor-api/internal/models"
	"salesor-api/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// HandleMessage godoc
// @Summary Ask the AI assistant about your CRM data
// @Tags chat
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body ChatRequest true "question"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) HandleMessage(c *gin.Context) {
	userID := c.GetString("userID")

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	reply, err := h.chat.Reply(c.Request.Context(), userID, req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to generate reply",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   reply,
		"timestamp": time.Now(),
	})
}
