package models

import "time"

// Attachment is opaque file metadata carried on a message.
type Attachment struct {
	Name string `bson:"name" json:"name"`
	URL  string `bson:"url" json:"url"`
	Type string `bson:"type" json:"type"`
	Size int64  `bson:"size,omitempty" json:"size,omitempty"`
}

// Message is a durable point-to-point chat message.
type Message struct {
	ID          string       `bson:"id" json:"id"`
	SenderID    string       `bson:"senderId" json:"senderId"`
	SenderName  string       `bson:"senderName" json:"senderName"`
	RecipientID string       `bson:"recipientId" json:"recipientId"`
	Content     string       `bson:"content" json:"content"`
	Attachments []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
	// Read is updated independently of delivery; per-message read receipts
	// are not part of the relay contract yet.
	Read bool `bson:"read" json:"read"`
}
