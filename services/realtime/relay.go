package realtime

import (
	"context"
	"fmt"
	"time"

	messageRepo "vecindo/database/repository/message"
	"vecindo/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageRelay is point-to-point chat delivery with persistence and
// typing-indicator signaling.
type MessageRelay interface {
	Send(ctx context.Context, sender models.UserIdentity, recipientID, content string, attachments []models.Attachment) (*models.Message, error)
	Typing(ctx context.Context, senderID, recipientID, conversationID string, isTyping bool)
}

// DefaultMessageRelay is the production implementation.
type DefaultMessageRelay struct {
	Hub       *Hub
	Repo      messageRepo.MessageRepository
	Publisher EventPublisher // optional cross-instance fan-out
	Logger    *zap.Logger
}

// Send persists the message unconditionally, then pushes it to every open
// session of the recipient. An offline recipient still gets the durable
// record.
func (r *DefaultMessageRelay) Send(ctx context.Context, sender models.UserIdentity, recipientID, content string, attachments []models.Attachment) (*models.Message, error) {
	if recipientID == "" || content == "" {
		return nil, fmt.Errorf("%w: recipientId and content are required", ErrInvalidInput)
	}

	m := &models.Message{
		ID:          uuid.NewString(),
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		RecipientID: recipientID,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   time.Now(),
		Read:        false,
	}

	if err := r.Repo.Create(m); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	payload := formatMessage(m)
	r.Hub.PushToUser(recipientID, EventMessage, payload)
	if r.Publisher != nil {
		if err := r.Publisher.PublishToUser(ctx, recipientID, EventMessage, payload); err != nil {
			r.Logger.Warn("failed to publish message to backplane",
				zap.String("recipientId", recipientID), zap.Error(err))
		}
	}

	return m, nil
}

// Typing fans a typing indicator out to the recipient's open sessions.
// Nothing is persisted; a recipient with no sessions drops it silently.
func (r *DefaultMessageRelay) Typing(ctx context.Context, senderID, recipientID, conversationID string, isTyping bool) {
	payload := TypingEvent{
		UserID:         senderID,
		ConversationID: conversationID,
		IsTyping:       isTyping,
	}

	r.Hub.PushToUser(recipientID, EventTyping, payload)
	if r.Publisher != nil {
		if err := r.Publisher.PublishToUser(ctx, recipientID, EventTyping, payload); err != nil {
			r.Logger.Debug("failed to publish typing event to backplane",
				zap.String("recipientId", recipientID), zap.Error(err))
		}
	}
}
