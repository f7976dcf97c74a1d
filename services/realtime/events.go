package realtime

import (
	"time"

	"vecindo/models"
)

// Event types pushed down live sessions.
const (
	EventNotification = "notification"
	EventMessage      = "message"
	EventTyping       = "typing"
	EventOnlineUsers  = "online_users"
)

// NotificationEvent is the wire payload for a pushed notification.
type NotificationEvent struct {
	ID                  string         `json:"id"`
	Type                string         `json:"type"`
	Title               string         `json:"title"`
	Message             string         `json:"message"`
	Timestamp           time.Time      `json:"timestamp"`
	Read                bool           `json:"read"`
	Link                string         `json:"link,omitempty"`
	Priority            string         `json:"priority,omitempty"`
	RequireConfirmation bool           `json:"requireConfirmation,omitempty"`
	Data                map[string]any `json:"data,omitempty"`
}

func formatNotification(n *models.Notification) NotificationEvent {
	return NotificationEvent{
		ID:                  n.ID,
		Type:                n.Type,
		Title:               n.Title,
		Message:             n.Message,
		Timestamp:           n.CreatedAt,
		Read:                n.Read,
		Link:                n.Link,
		Priority:            n.Priority,
		RequireConfirmation: n.RequireConfirmation,
		Data:                n.Data,
	}
}

// MessageEvent is the wire payload for a pushed direct message.
type MessageEvent struct {
	ID          string              `json:"id"`
	SenderID    string              `json:"senderId"`
	SenderName  string              `json:"senderName"`
	RecipientID string              `json:"recipientId"`
	Content     string              `json:"content"`
	Timestamp   time.Time           `json:"timestamp"`
	Read        bool                `json:"read"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

func formatMessage(m *models.Message) MessageEvent {
	return MessageEvent{
		ID:          m.ID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		Timestamp:   m.CreatedAt,
		Read:        m.Read,
		Attachments: m.Attachments,
	}
}

// TypingEvent is the ephemeral typing-indicator payload. It is never
// persisted.
type TypingEvent struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
	IsTyping       bool   `json:"isTyping"`
}
