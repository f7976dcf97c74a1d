package handlers

import (
	"errors"
	"net/http"
	"strconv"

	messageRepo "vecindo/database/repository/message"
	"vecindo/models"
	"vecindo/services/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MessageHandler exposes the REST surface of the direct message relay.
type MessageHandler struct {
	Relay  realtime.MessageRelay
	Repo   messageRepo.MessageRepository
	Logger *zap.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(relay realtime.MessageRelay, repo messageRepo.MessageRepository, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{Relay: relay, Repo: repo, Logger: logger}
}

type sendMessageRequest struct {
	RecipientID string              `json:"recipientId" binding:"required"`
	Content     string              `json:"content" binding:"required"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

// SendHandler persists a direct message and pushes it to the recipient's
// open sessions. Works identically to the websocket send_message path.
func (h *MessageHandler) SendHandler(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sender := models.UserIdentity{
		ID:   c.GetString("userID"),
		Name: c.GetString("userName"),
	}

	message, err := h.Relay.Send(c.Request.Context(), sender, req.RecipientID, req.Content, req.Attachments)
	if err != nil {
		if errors.Is(err, realtime.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.Logger.Error("failed to send message", zap.String("senderId", sender.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, message)
}

// ConversationHandler returns the messages exchanged between the
// authenticated user and another user, newest first.
func (h *MessageHandler) ConversationHandler(c *gin.Context) {
	userID := c.GetString("userID")
	otherID := c.Param("userId")

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	messages, err := h.Repo.FindBetween(userID, otherID, limit)
	if err != nil {
		h.Logger.Error("failed to fetch conversation",
			zap.String("userId", userID), zap.String("otherId", otherID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}
